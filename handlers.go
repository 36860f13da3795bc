package main

import (
	"errors"
	"net/http"
	"strconv"

	"ledger/models"
	"ledger/pkg/account"
	"ledger/pkg/database"
	"ledger/pkg/form"
	"ledger/pkg/logging"
	"ledger/pkg/session"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	msgStatementAdded    = "Statement added"
	msgStatementUpdated  = "Statement updated"
	msgStatementDeleted  = "Statement deleted"
	msgStatementNotFound = "Statement not found"
)

// app carries the server's dependencies; handlers are its methods.
type app struct {
	db         *gorm.DB
	accounts   *account.Service
	sessions   *session.Store
	statements *statementStore
}

func newApp(db *gorm.DB, sessions *session.Store) *app {
	return &app{
		db:         db,
		accounts:   account.NewService(db, 0),
		sessions:   sessions,
		statements: &statementStore{db: db},
	}
}

// page is the data every template receives.
type page struct {
	Title      string
	Email      string
	Error      string
	FormEmail  string
	Flashes    []string
	Statements []models.Statement
	Total      float64
	Statement  *models.Statement
}

// render fills in the identity and pending flashes before rendering.
func (a *app) render(c *gin.Context, status int, name string, p page) {
	if id, ok := session.FromContext(c); ok {
		p.Email = id.Email
	}
	p.Flashes = a.sessions.Flashes(c)
	c.HTML(status, name, p)
}

func (a *app) fail(c *gin.Context, err error) {
	logging.FromContext(c).Error("request failed", "error", err)
	c.AbortWithStatus(http.StatusInternalServerError)
}

func setupRoutes(r *gin.Engine, a *app) {
	r.Use(a.loadSession())

	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/login") })
	r.GET("/healthz", a.healthHandler)
	r.GET("/register", a.registerPage)
	r.POST("/register", a.registerHandler)
	r.GET("/login", a.loginPage)
	r.POST("/login", a.loginHandler)
	r.GET("/logout", a.logoutHandler)

	authGroup := r.Group("")
	authGroup.Use(requireLogin())
	authGroup.GET("/index", a.indexHandler)
	authGroup.POST("/addStatement", a.addStatementHandler)
	authGroup.GET("/showData", a.showDataHandler)
	authGroup.GET("/delete/:id", a.deleteHandler)
	authGroup.GET("/edit/:id", a.editPage)
	authGroup.POST("/edit/:id", a.editHandler)
	authGroup.POST("/updateStatement", a.updateStatementHandler)
	authGroup.GET("/export/csv", a.exportCSVHandler)
	authGroup.GET("/export/xlsx", a.exportXLSXHandler)
}

func (a *app) healthHandler(c *gin.Context) {
	if err := database.Ping(a.db); err != nil {
		logging.FromContext(c).Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *app) indexHandler(c *gin.Context) {
	a.render(c, http.StatusOK, "index.html", page{Title: "Add"})
}

func (a *app) addStatementHandler(c *gin.Context) {
	in, err := form.ParseStatement(c.Request)
	if err != nil {
		a.sessions.AddFlash(c, form.Message(err))
		c.Redirect(http.StatusFound, "/index")
		return
	}
	id := currentIdentity(c)
	if _, err := a.statements.create(c.Request.Context(), id.UserID, in); err != nil {
		a.fail(c, err)
		return
	}
	a.sessions.AddFlash(c, msgStatementAdded)
	c.Redirect(http.StatusFound, "/showData")
}

func (a *app) showDataHandler(c *gin.Context) {
	rows, err := a.statements.listByOwner(c.Request.Context(), currentIdentity(c).UserID)
	if err != nil {
		a.fail(c, err)
		return
	}
	a.render(c, http.StatusOK, "statements.html", page{Title: "Statements", Statements: rows, Total: sumAmounts(rows)})
}

func (a *app) deleteHandler(c *gin.Context) {
	id, ok := form.ParseID(c.Param("id"))
	if ok {
		n, err := a.statements.deleteOwned(c.Request.Context(), currentIdentity(c).UserID, id)
		if err != nil {
			a.fail(c, err)
			return
		}
		if n > 0 {
			a.sessions.AddFlash(c, msgStatementDeleted)
		}
	}
	c.Redirect(http.StatusFound, "/showData")
}

func (a *app) editPage(c *gin.Context) {
	id, ok := form.ParseID(c.Param("id"))
	if !ok {
		a.notFound(c)
		return
	}
	row, err := a.statements.getOwned(c.Request.Context(), currentIdentity(c).UserID, id)
	if errors.Is(err, errStatementNotFound) {
		a.notFound(c)
		return
	}
	if err != nil {
		a.fail(c, err)
		return
	}
	a.render(c, http.StatusOK, "edit.html", page{Title: "Edit", Statement: row})
}

// editHandler takes the id from the path; updateStatementHandler from the form.
func (a *app) editHandler(c *gin.Context) {
	id, ok := form.ParseID(c.Param("id"))
	if !ok {
		a.notFound(c)
		return
	}
	in, err := form.ParseStatement(c.Request)
	a.applyUpdate(c, id, in, err)
}

func (a *app) updateStatementHandler(c *gin.Context) {
	up, err := form.ParseStatementUpdate(c.Request)
	if up.ID == 0 {
		a.notFound(c)
		return
	}
	a.applyUpdate(c, up.ID, up.Statement, err)
}

// applyUpdate is the single update path. parseErr is the form error, if any;
// the row is checked for ownership before the form error is reported so a
// foreign id never reveals whether it exists.
func (a *app) applyUpdate(c *gin.Context, id uint, in form.Statement, parseErr error) {
	ctx := c.Request.Context()
	userID := currentIdentity(c).UserID
	if _, err := a.statements.getOwned(ctx, userID, id); err != nil {
		if errors.Is(err, errStatementNotFound) {
			a.notFound(c)
			return
		}
		a.fail(c, err)
		return
	}
	if parseErr != nil {
		a.sessions.AddFlash(c, form.Message(parseErr))
		c.Redirect(http.StatusFound, "/edit/"+strconv.FormatUint(uint64(id), 10))
		return
	}
	if err := a.statements.updateOwned(ctx, userID, id, in); err != nil {
		if errors.Is(err, errStatementNotFound) {
			a.notFound(c)
			return
		}
		a.fail(c, err)
		return
	}
	a.sessions.AddFlash(c, msgStatementUpdated)
	c.Redirect(http.StatusFound, "/showData")
}

func (a *app) notFound(c *gin.Context) {
	a.sessions.AddFlash(c, msgStatementNotFound)
	c.Redirect(http.StatusFound, "/showData")
}
