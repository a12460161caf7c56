// Package apitest provides an in-memory stand-in for the portfolio REST API.
// It speaks the same envelope and status codes, so the client, services and
// HTTP handlers can be exercised end to end without a network dependency.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "secret"
	AdminToken    = "test-token"
)

// Request is one call the fake received.
type Request struct {
	Method string
	Path   string
	Query  string
	Auth   string
}

type failure struct {
	status  int
	message string
}

type Server struct {
	*httptest.Server

	mu          sync.Mutex
	seq         int
	tokens      map[string]bool
	password    string
	user        map[string]any
	about       map[string]any
	collections map[string][]map[string]any
	failures    map[string]failure
	requests    []Request
}

func NewServer() *Server {
	s := &Server{
		tokens:   map[string]bool{AdminToken: true},
		password: AdminPassword,
		user: map[string]any{
			"_id":   "user-1",
			"name":  "Admin",
			"email": AdminEmail,
			"role":  "admin",
		},
		about:       map[string]any{"_id": "about-1", "title": "Jane Doe", "stats": []any{}},
		collections: make(map[string][]map[string]any),
		failures:    make(map[string]failure),
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

// URL of the API root, matching the shape of API_URL.
func (s *Server) BaseURL() string { return s.Server.URL + "/api" }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record, s.injectFailures)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.login)
		r.Post("/auth/register", s.register)
		r.With(s.requireToken).Get("/auth/me", s.me)
		r.With(s.requireToken).Put("/auth/profile", s.updateProfile)
		r.With(s.requireToken).Put("/auth/password", s.updatePassword)

		r.Get("/about", s.getAbout)
		r.With(s.requireToken).Put("/about", s.putAbout)

		for _, name := range []string{"skills", "experience", "testimonials", "services", "projects", "blogs"} {
			s.crud(r, name)
		}

		r.Post("/contact", s.create("contact"))
		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)
			r.Get("/contact", s.list("contact"))
			r.Get("/contact/{id}", s.getByID("contact"))
			r.Put("/contact/{id}/read", s.flag("contact", "isRead"))
			r.Put("/contact/{id}/archive", s.flag("contact", "isArchived"))
			r.Delete("/contact/{id}", s.remove("contact"))

			r.Post("/upload/image", s.upload("image"))
			r.Post("/upload/images", s.upload("images"))
			r.Get("/upload/media", s.list("media"))
			r.Delete("/upload/{id}", s.remove("media"))
		})
	})
	return r
}

func (s *Server) crud(r chi.Router, name string) {
	r.Get("/"+name, s.list(name))
	if name == "projects" || name == "blogs" {
		r.Get("/"+name+"/id/{id}", s.getByID(name))
		r.Get("/"+name+"/{id}", s.getBySlug(name))
	} else {
		r.Get("/"+name+"/{id}", s.getByID(name))
	}
	r.With(s.requireToken).Post("/"+name, s.create(name))
	r.With(s.requireToken).Put("/"+name+"/{id}", s.update(name))
	r.With(s.requireToken).Delete("/"+name+"/{id}", s.remove(name))
}

// ---------- test controls ----------

// Seed inserts items (any JSON-marshalable value) and returns their ids.
func (s *Server) Seed(collection string, items ...any) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(items))
	for _, item := range items {
		doc := toDoc(item)
		s.insert(collection, doc)
		ids = append(ids, doc["_id"].(string))
	}
	return ids
}

// SetAbout replaces the singleton about record.
func (s *Server) SetAbout(about any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := toDoc(about)
	if _, ok := doc["_id"]; !ok {
		doc["_id"] = "about-1"
	}
	s.about = doc
}

// Items returns a snapshot of a collection.
func (s *Server) Items(collection string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, len(s.collections[collection]))
	for i, doc := range s.collections[collection] {
		out[i] = clone(doc)
	}
	return out
}

// Item returns one record by id, or nil.
func (s *Server) Item(collection, id string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, doc := s.find(collection, id); doc != nil {
		return clone(doc)
	}
	return nil
}

func (s *Server) About() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.about)
}

func (s *Server) User() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.user)
}

// Revoke invalidates every issued token, as if they had expired.
func (s *Server) Revoke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]bool)
}

// Fail makes every "METHOD /path" call (path without the /api prefix)
// answer with status and message until cleared with status 0.
func (s *Server) Fail(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	if status == 0 {
		delete(s.failures, key)
		return
	}
	s.failures[key] = failure{status: status, message: message}
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count reports how many calls matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// ---------- middleware ----------

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   strings.TrimPrefix(r.URL.Path, "/api"),
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.failures[r.Method+" "+strings.TrimPrefix(r.URL.Path, "/api")]
		s.mu.Unlock()
		if ok {
			fail(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		valid := ok && s.tokens[token]
		s.mu.Unlock()
		if !valid {
			fail(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ---------- auth ----------

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if body.Email != s.user["email"] || body.Password != s.password {
		fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	s.tokens[AdminToken] = true
	payload := clone(s.user)
	payload["token"] = AdminToken
	respond(w, http.StatusOK, payload)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if body.Email == s.user["email"] {
		fail(w, http.StatusBadRequest, "User already exists")
		return
	}
	s.seq++
	s.user = map[string]any{
		"_id":   fmt.Sprintf("user-%d", s.seq),
		"name":  body.Name,
		"email": body.Email,
		"role":  "admin",
	}
	s.password = body.Password
	token := fmt.Sprintf("token-%d", s.seq)
	s.tokens[token] = true

	payload := clone(s.user)
	payload["token"] = token
	respond(w, http.StatusCreated, payload)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, s.User())
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if !decode(w, r, &body) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range []string{"name", "email"} {
		if v, ok := body[k]; ok {
			s.user[k] = v
		}
	}
	respond(w, http.StatusOK, clone(s.user))
}

func (s *Server) updatePassword(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if !decode(w, r, &body) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if body["currentPassword"] != s.password {
		fail(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	s.password = body["newPassword"]
	respond(w, http.StatusOK, map[string]any{"message": "Password updated"})
}

// ---------- about ----------

func (s *Server) getAbout(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, s.About())
}

func (s *Server) putAbout(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if !decode(w, r, &body) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range body {
		if k == "_id" {
			continue
		}
		s.about[k] = v
	}
	respond(w, http.StatusOK, clone(s.about))
}

// ---------- collections ----------

func (s *Server) list(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		s.mu.Lock()
		docs := make([]map[string]any, 0, len(s.collections[name]))
		for _, doc := range s.collections[name] {
			if matches(name, doc, q.Get) {
				docs = append(docs, clone(doc))
			}
		}
		s.mu.Unlock()

		if name == "contact" || name == "media" {
			sort.SliceStable(docs, func(i, j int) bool {
				return fmt.Sprint(docs[i]["createdAt"]) > fmt.Sprint(docs[j]["createdAt"])
			})
		}
		respond(w, http.StatusOK, docs)
	}
}

// matches applies the query filters the real API supports.
func matches(name string, doc map[string]any, q func(string) string) bool {
	switch name {
	case "projects":
		if q("visible") != "all" && doc["isVisible"] != true {
			return false
		}
		if q("featured") == "true" && doc["featured"] != true {
			return false
		}
	case "blogs":
		if q("published") == "true" && doc["isPublished"] != true {
			return false
		}
	case "contact":
		archived := doc["isArchived"] == true
		if archived != (q("archived") == "true") {
			return false
		}
	}
	return true
}

func (s *Server) getByID(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if doc := s.Item(name, chi.URLParam(r, "id")); doc != nil {
			respond(w, http.StatusOK, doc)
			return
		}
		fail(w, http.StatusNotFound, notFound(name))
	}
}

// getBySlug serves public detail pages; blog reads count as views.
func (s *Server) getBySlug(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "id")
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, doc := range s.collections[name] {
			if doc["slug"] != slug {
				continue
			}
			if name == "blogs" {
				views, _ := doc["views"].(float64)
				doc["views"] = views + 1
			}
			respond(w, http.StatusOK, clone(doc))
			return
		}
		fail(w, http.StatusNotFound, notFound(name))
	}
}

func (s *Server) create(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc map[string]any
		if !decode(w, r, &doc) {
			return
		}
		if doc == nil {
			doc = make(map[string]any)
		}
		if msg := required(name, doc); msg != "" {
			fail(w, http.StatusBadRequest, msg)
			return
		}
		delete(doc, "_id")
		s.mu.Lock()
		s.insert(name, doc)
		out := clone(doc)
		s.mu.Unlock()
		respond(w, http.StatusCreated, out)
	}
}

func (s *Server) update(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if !decode(w, r, &body) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		_, doc := s.find(name, chi.URLParam(r, "id"))
		if doc == nil {
			fail(w, http.StatusNotFound, notFound(name))
			return
		}
		for k, v := range body {
			if k == "_id" {
				continue
			}
			doc[k] = v
		}
		if title, ok := body["title"].(string); ok && (name == "projects" || name == "blogs") {
			doc["slug"] = slugify(title)
		}
		doc["updatedAt"] = now()
		respond(w, http.StatusOK, clone(doc))
	}
}

func (s *Server) flag(name, field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		_, doc := s.find(name, chi.URLParam(r, "id"))
		if doc == nil {
			fail(w, http.StatusNotFound, notFound(name))
			return
		}
		doc[field] = true
		respond(w, http.StatusOK, clone(doc))
	}
}

func (s *Server) remove(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		i, doc := s.find(name, chi.URLParam(r, "id"))
		if doc == nil {
			fail(w, http.StatusNotFound, notFound(name))
			return
		}
		items := s.collections[name]
		s.collections[name] = append(items[:i:i], items[i+1:]...)
		respond(w, http.StatusOK, map[string]any{})
	}
}

func (s *Server) upload(field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			fail(w, http.StatusBadRequest, "Invalid upload")
			return
		}
		headers := r.MultipartForm.File[field]
		if len(headers) == 0 {
			fail(w, http.StatusBadRequest, "No file uploaded")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		assets := make([]map[string]any, 0, len(headers))
		for _, h := range headers {
			doc := map[string]any{
				"filename": h.Filename,
				"size":     h.Size,
				"mimetype": h.Header.Get("Content-Type"),
			}
			s.insert("media", doc)
			doc["url"] = "/uploads/" + doc["_id"].(string) + "-" + h.Filename
			assets = append(assets, clone(doc))
		}
		if field == "image" {
			respond(w, http.StatusCreated, assets[0])
			return
		}
		respond(w, http.StatusCreated, assets)
	}
}

// ---------- helpers (callers hold s.mu) ----------

func (s *Server) insert(name string, doc map[string]any) {
	s.seq++
	if id, _ := doc["_id"].(string); id == "" {
		doc["_id"] = fmt.Sprintf("id-%d", s.seq)
	}
	if _, ok := doc["createdAt"]; !ok {
		doc["createdAt"] = time.Date(2024, 1, 1, 0, 0, s.seq, 0, time.UTC).Format(time.RFC3339)
	}
	if title, ok := doc["title"].(string); ok && (name == "projects" || name == "blogs") {
		if slug, _ := doc["slug"].(string); slug == "" {
			doc["slug"] = slugify(title)
		}
	}
	s.collections[name] = append(s.collections[name], doc)
}

func (s *Server) find(name, id string) (int, map[string]any) {
	for i, doc := range s.collections[name] {
		if doc["_id"] == id {
			return i, doc
		}
	}
	return -1, nil
}

var requiredFields = map[string][]string{
	"skills":       {"name"},
	"projects":     {"title", "description"},
	"blogs":        {"title", "content"},
	"experience":   {"title", "company"},
	"testimonials": {"name", "content"},
	"services":     {"title", "description"},
	"contact":      {"name", "email", "message"},
}

func required(name string, doc map[string]any) string {
	for _, field := range requiredFields[name] {
		if v, _ := doc[field].(string); strings.TrimSpace(v) == "" {
			return fmt.Sprintf("Please provide %s", field)
		}
	}
	return ""
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(title string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
}

func notFound(name string) string {
	return "No " + name + " record with that id"
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

func toDoc(v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("apitest: marshal seed: %v", err))
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		panic(fmt.Sprintf("apitest: seed is not an object: %v", err))
	}
	return doc
}

func clone(doc map[string]any) map[string]any {
	b, _ := json.Marshal(doc)
	var out map[string]any
	_ = json.Unmarshal(b, &out)
	return out
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		fail(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func fail(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}
