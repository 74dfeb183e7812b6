// Routes gin's request logging through the Gatepass Logger defined in logger.go.

package log

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// Adapted from https://learninggolang.com/it5-gin-structured-logging.html.
// Replaces gin's default writer-based log line with a structured zerolog entry,
// levelled by the response status.
func LoggerGinExtension(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// Let the rest of the handler chain run first
		c.Next()

		param := gin.LogFormatterParams{}
		param.TimeStamp = time.Now()
		param.Latency = param.TimeStamp.Sub(start)
		if param.Latency > time.Minute {
			param.Latency = param.Latency.Truncate(time.Second)
		}

		param.ClientIP = c.ClientIP()
		param.Method = c.Request.Method
		param.StatusCode = c.Writer.Status()
		param.ErrorMessage = c.Errors.ByType(gin.ErrorTypePrivate).String()
		param.BodySize = c.Writer.Size()
		if raw != "" {
			path = path + "?" + raw
		}
		param.Path = path

		message := fmt.Sprintf("%s | %s | %s | %d | %s | %s",
			param.ClientIP,
			param.Method,
			param.Path,
			param.StatusCode,
			param.Latency.String(),
			param.ErrorMessage)

		if c.Writer.Status() >= 500 {
			logger.Error().Msg(message)
		} else if c.Writer.Status() >= 400 {
			logger.Warn().Msg(message)
		} else {
			logger.Info().Msg(message)
		}
	}
}
