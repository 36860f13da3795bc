package main

import (
	"errors"
	"net/http"

	"ledger/pkg/account"
	"ledger/pkg/form"
	"ledger/pkg/logging"
	"ledger/pkg/session"

	"github.com/gin-gonic/gin"
)

const (
	msgEmailTaken         = "Email already registered"
	msgRegistered         = "Registration successful, please log in"
	msgInvalidLogin       = "Invalid email or password"
	msgSomethingWentWrong = "Something went wrong, please try again"
)

func (a *app) registerPage(c *gin.Context) {
	a.render(c, http.StatusOK, "register.html", page{Title: "Register"})
}

func (a *app) registerHandler(c *gin.Context) {
	creds, err := form.ParseRegistration(c.Request)
	if err != nil {
		a.render(c, http.StatusOK, "register.html", page{Title: "Register", Error: form.Message(err), FormEmail: c.PostForm("email")})
		return
	}
	if _, err := a.accounts.Register(c.Request.Context(), creds.Email, creds.Password); err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			a.render(c, http.StatusOK, "register.html", page{Title: "Register", Error: msgEmailTaken, FormEmail: creds.Email})
			return
		}
		logging.FromContext(c).Error("registration failed", "error", err)
		a.render(c, http.StatusOK, "register.html", page{Title: "Register", Error: msgSomethingWentWrong, FormEmail: creds.Email})
		return
	}
	logging.FromContext(c).Info("user registered", "email", creds.Email)
	a.sessions.AddFlash(c, msgRegistered)
	c.Redirect(http.StatusFound, "/login")
}

func (a *app) loginPage(c *gin.Context) {
	if _, ok := session.FromContext(c); ok {
		c.Redirect(http.StatusFound, "/index")
		return
	}
	a.render(c, http.StatusOK, "login.html", page{Title: "Log in"})
}

func (a *app) loginHandler(c *gin.Context) {
	creds, err := form.ParseLogin(c.Request)
	if err != nil {
		a.render(c, http.StatusOK, "login.html", page{Title: "Log in", Error: form.Message(err), FormEmail: c.PostForm("email")})
		return
	}
	user, err := a.accounts.Authenticate(c.Request.Context(), creds.Email, creds.Password)
	if err != nil {
		if !errors.Is(err, account.ErrInvalidCredentials) {
			logging.FromContext(c).Error("login failed", "error", err)
		}
		a.render(c, http.StatusOK, "login.html", page{Title: "Log in", Error: msgInvalidLogin, FormEmail: creds.Email})
		return
	}
	if _, err := a.sessions.Start(c, user.ID); err != nil {
		logging.FromContext(c).Error("start session failed", "error", err)
		a.render(c, http.StatusOK, "login.html", page{Title: "Log in", Error: msgSomethingWentWrong, FormEmail: creds.Email})
		return
	}
	c.Redirect(http.StatusFound, "/showData")
}

func (a *app) logoutHandler(c *gin.Context) {
	if err := a.sessions.Destroy(c); err != nil {
		logging.FromContext(c).Error("logout failed", "error", err)
	}
	c.Redirect(http.StatusFound, "/login")
}
