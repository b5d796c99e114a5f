package actions

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/xid"

	"gitlab.com/netops-console/vyos_console_api/logger"
)

const sessionIDValue = "id"

// ConsoleSession identifies the browser session owning the drafts. A new
// session id is issued in a cookie when the request carries none.
func (actions *Actions) ConsoleSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		// an undecodable cookie yields a fresh session
		session, _ := actions.store.Get(c.Request, actions.cfg.Server.Session.Name)

		id, _ := session.Values[sessionIDValue].(string)
		if id == "" {
			id = xid.New().String()
			session.Values[sessionIDValue] = id
			if err := session.Save(c.Request, c.Writer); err != nil {
				l := getlog(c)
				l.Error().Err(err).Msg("Unable to save console session")
				abortWithError(c, http.StatusInternalServerError, "unable to start console session")
				return
			}
		}

		c.Set(logger.SessionIDKey, id)
		c.Next()
	}
}

func getSessionID(c *gin.Context) string {
	return c.GetString(logger.SessionIDKey)
}
