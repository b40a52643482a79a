// Package catalogtest runs an in-memory catalog service for tests.
package catalogtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/five82/folio/internal/catalog"
)

// Shape selects how successful responses are wrapped.
type Shape int

const (
	// Enveloped wraps payloads as {status, data, message}.
	Enveloped Shape = iota
	// Bare returns payloads unwrapped.
	Bare
)

// Failure is a canned response for one route.
type Failure struct {
	Status int
	Body   string
}

// Server is a fake catalog backed by a map. Safe for concurrent use.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	shape    Shape
	books    map[int64]catalog.Record
	nextID   int64
	failures map[string]Failure
	calls    map[string]int
	users    map[string]string
	lastBody map[string]map[string]any
}

// New starts a fake catalog seeded with books and registers cleanup on t.
func New(t testing.TB, shape Shape, books ...catalog.Record) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		shape:    shape,
		books:    make(map[int64]catalog.Record),
		failures: make(map[string]Failure),
		calls:    make(map[string]int),
		users:    make(map[string]string),
		lastBody: make(map[string]map[string]any),
	}
	for _, b := range books {
		s.books[b.ID] = b
		if b.ID > s.nextID {
			s.nextID = b.ID
		}
	}

	router := gin.New()
	router.Use(s.countAndFail)
	router.GET("/book/list", s.list)
	router.GET("/book/detail/:id", s.detail)
	router.POST("/book/insert", s.insert)
	router.PUT("/book/update/simple/:id", s.update)
	router.DELETE("/book/delete/:id", s.remove)
	router.POST("/user/login", s.login)

	s.Server = httptest.NewServer(router)
	t.Cleanup(s.Server.Close)
	return s
}

// AddUser registers login credentials.
func (s *Server) AddUser(email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = password
}

// Fail makes every request whose route starts with prefix return f.
func (s *Server) Fail(prefix string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[prefix] = f
}

// Calls returns how many requests hit the given route (e.g. "GET /book/list").
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// Book returns the stored record for id.
func (s *Server) Book(id int64) (catalog.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	return b, ok
}

// LastBody returns the JSON object last sent to route.
func (s *Server) LastBody(route string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBody[route]
}

func (s *Server) countAndFail(c *gin.Context) {
	route := c.Request.Method + " " + c.FullPath()
	s.mu.Lock()
	s.calls[route]++
	var failure *Failure
	for prefix, f := range s.failures {
		if strings.HasPrefix(c.Request.URL.Path, prefix) {
			f := f
			failure = &f
			break
		}
	}
	s.mu.Unlock()

	if failure != nil {
		c.Data(failure.Status, "text/plain; charset=utf-8", []byte(failure.Body))
		c.Abort()
		return
	}
	c.Next()
}

func (s *Server) respond(c *gin.Context, status int, data any) {
	if s.shape == Bare {
		c.JSON(status, data)
		return
	}
	c.JSON(status, gin.H{"status": "ok", "data": data, "message": ""})
}

func (s *Server) list(c *gin.Context) {
	owner := c.Query("userId")

	s.mu.Lock()
	out := make([]catalog.Record, 0, len(s.books))
	for _, b := range s.books {
		if owner != "" && b.UserID != owner {
			continue
		}
		out = append(out, b)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	s.respond(c, http.StatusOK, out)
}

func (s *Server) detail(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	b, found := s.books[id]
	s.mu.Unlock()
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "book not found"})
		return
	}
	s.respond(c, http.StatusOK, b)
}

func (s *Server) insert(c *gin.Context) {
	var draft catalog.Draft
	if !s.bind(c, &draft) {
		return
	}
	s.mu.Lock()
	s.nextID++
	rec := catalog.Record{
		ID:            s.nextID,
		Title:         draft.Title,
		Author:        draft.Author,
		Content:       draft.Content,
		CoverImageURL: draft.CoverImageURL,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	s.books[rec.ID] = rec
	s.mu.Unlock()
	s.respond(c, http.StatusOK, rec)
}

func (s *Server) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var fields catalog.Update
	if !s.bind(c, &fields) {
		return
	}
	s.mu.Lock()
	b, found := s.books[id]
	if found {
		if fields.Title != nil {
			b.Title = *fields.Title
		}
		if fields.Author != nil {
			b.Author = *fields.Author
		}
		if fields.Content != nil {
			b.Content = *fields.Content
		}
		if fields.CoverImageURL != nil {
			b.CoverImageURL = *fields.CoverImageURL
		}
		s.books[id] = b
	}
	s.mu.Unlock()
	if !found {
		c.String(http.StatusNotFound, "book not found")
		return
	}
	s.respond(c, http.StatusOK, b)
}

func (s *Server) remove(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.books, id)
	s.mu.Unlock()
	c.Status(http.StatusOK)
}

func (s *Server) login(c *gin.Context) {
	var creds catalog.Credentials
	if !s.bind(c, &creds) {
		return
	}
	s.mu.Lock()
	want, known := s.users[creds.Email]
	s.mu.Unlock()
	if !known || want != creds.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid credentials"})
		return
	}
	c.String(http.StatusOK, "login ok")
}

// bind decodes the JSON body into dest and records it as a raw object.
func (s *Server) bind(c *gin.Context, dest any) bool {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return false
	}
	raw := map[string]any{}
	if err := json.Unmarshal(body, &raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return false
	}
	if err := json.Unmarshal(body, dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return false
	}

	s.mu.Lock()
	s.lastBody[c.Request.Method+" "+c.FullPath()] = raw
	s.mu.Unlock()
	return true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid id"})
		return 0, false
	}
	return id, true
}
