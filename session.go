package main

import (
	"errors"
	"net/http"

	"ledger/pkg/account"
	"ledger/pkg/logging"
	"ledger/pkg/session"

	"github.com/gin-gonic/gin"
)

// loadSession resolves the session cookie into a per-request identity. It
// never rejects a request; requireLogin does that.
func (a *app) loadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		row, err := a.sessions.Lookup(c)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				logging.FromContext(c).Error("session lookup failed", "error", err)
			}
			c.Next()
			return
		}
		user, err := a.accounts.Get(c.Request.Context(), row.UserID)
		if err != nil {
			if !errors.Is(err, account.ErrUserNotFound) {
				logging.FromContext(c).Error("session user lookup failed", "error", err)
			}
			c.Next()
			return
		}
		session.SetIdentity(c, session.Identity{SessionID: row.ID, UserID: user.ID, Email: user.Email})
		c.Next()
	}
}

// requireLogin sends visitors without an identity to the login page before
// any handler runs.
func requireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := session.FromContext(c); !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentIdentity(c *gin.Context) session.Identity {
	id, _ := session.FromContext(c)
	return id
}
