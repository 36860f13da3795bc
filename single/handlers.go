// Package single serves the single-tenant ledger: one shared statements table,
// no accounts.
package single

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"ledger/models"
	"ledger/pkg/form"
	"ledger/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"gorm.io/gorm"
)

// formValues echoes what the user typed back into the page.
type formValues struct {
	Date     string
	Name     string
	Number   string
	Category string
}

type page struct {
	Title      string
	Error      string
	ID         uint
	Form       formValues
	Statements []models.SharedStatement
}

func valuesOf(c *gin.Context) formValues {
	return formValues{
		Date:     c.PostForm("date"),
		Name:     c.PostForm("name"),
		Number:   c.PostForm("number"),
		Category: c.PostForm("category"),
	}
}

func valuesFromRow(row *models.SharedStatement) formValues {
	return formValues{Date: row.Date, Name: row.Name, Number: strconv.Itoa(row.Number), Category: row.Category}
}

// Server holds the handler dependencies.
type Server struct {
	store *Store
}

func NewServer(db *gorm.DB) *Server {
	return &Server{store: NewStore(db)}
}

// NewRouter wires middleware, templates and routes onto a fresh engine.
func NewRouter(db *gorm.DB, html render.HTMLRender, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(logger))
	r.HTMLRender = html
	NewServer(db).Routes(r)
	return r
}

func (s *Server) Routes(r *gin.Engine) {
	r.GET("/", s.index)
	r.POST("/addStatement", s.addStatement)
	r.GET("/showData", s.showData)
	r.GET("/delete/:id", s.delete)
	r.GET("/edit/:id", s.edit)
	r.POST("/editStatement/:id", s.update)
	r.POST("/update/:id", s.update)
}

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", page{Title: "Add"})
}

func (s *Server) addStatement(c *gin.Context) {
	in, err := form.ParseSharedStatement(c.Request)
	if err != nil {
		c.HTML(http.StatusBadRequest, "index.html", page{Title: "Add", Error: form.Message(err), Form: valuesOf(c)})
		return
	}
	if _, err := s.store.Create(c.Request.Context(), in); err != nil {
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/showData")
}

func (s *Server) showData(c *gin.Context) {
	rows, err := s.store.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.HTML(http.StatusOK, "statements.html", page{Title: "Statements", Statements: rows})
}

func (s *Server) delete(c *gin.Context) {
	if id, ok := form.ParseID(c.Param("id")); ok {
		if err := s.store.Delete(c.Request.Context(), id); err != nil {
			s.fail(c, err)
			return
		}
	}
	c.Redirect(http.StatusFound, "/showData")
}

func (s *Server) edit(c *gin.Context) {
	row, ok := s.lookup(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "edit.html", page{Title: "Edit", ID: row.ID, Form: valuesFromRow(row)})
}

// update backs both /editStatement/:id and /update/:id.
func (s *Server) update(c *gin.Context) {
	row, ok := s.lookup(c)
	if !ok {
		return
	}
	in, err := form.ParseSharedStatement(c.Request)
	if err != nil {
		c.HTML(http.StatusBadRequest, "edit.html", page{Title: "Edit", Error: form.Message(err), ID: row.ID, Form: valuesOf(c)})
		return
	}
	if err := s.store.Update(c.Request.Context(), row.ID, in); err != nil {
		if errors.Is(err, ErrNotFound) {
			s.notFound(c)
			return
		}
		s.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/showData")
}

// lookup resolves :id, rendering the not-found page itself on a miss.
func (s *Server) lookup(c *gin.Context) (*models.SharedStatement, bool) {
	id, ok := form.ParseID(c.Param("id"))
	if !ok {
		s.notFound(c)
		return nil, false
	}
	row, err := s.store.Get(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		s.notFound(c)
		return nil, false
	}
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return row, true
}

func (s *Server) notFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "not_found.html", page{Title: "Not found"})
}

func (s *Server) fail(c *gin.Context, err error) {
	logging.FromContext(c).Error("statement store failure", "error", err)
	c.AbortWithStatus(http.StatusInternalServerError)
}
