package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	idempotencyPrefix    = "idempotency:"
	maxIdempotencyKeyLen = 128
)

// idempotencyRecord is what is kept for a completed request
type idempotencyRecord struct {
	RequestHash string          `json:"request_hash"`
	Status      int             `json:"status"`
	Body        json.RawMessage `json:"body"`
}

// recordingWriter keeps a copy of the response body
type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// IdempotencyMiddleware replays the stored response when a request is retried with the same Idempotency-Key.
// Reusing a key with a different payload is a 409. Only 2xx responses are stored, in the session's storage.
// A retry that arrives while the first request with the same key is still running is a 409 as well.
// Must run after SessionMiddleware.
func IdempotencyMiddleware(logger *zap.Logger) gin.HandlerFunc {
	var inFlight sync.Map

	return func(c *gin.Context) {
		// Only apply to POST/PUT/PATCH requests
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}
		if len(idempotencyKey) > maxIdempotencyKeyLen {
			c.JSON(http.StatusBadRequest, gin.H{"error": "idempotency key too long"})
			c.Abort()
			return
		}

		session, ok := GetSessionFromContext(c)
		if !ok {
			c.Next()
			return
		}

		// Read request body
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.Error("Failed to read request body for idempotency", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process request"})
			c.Abort()
			return
		}

		// Restore body for handler
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		hash := sha256.Sum256(append([]byte(c.Request.URL.Path+"\n"), body...))
		requestHash := hex.EncodeToString(hash[:])
		storageKey := idempotencyPrefix + idempotencyKey

		// claim the key for this session until the response is stored
		flightKey := session.ID + "\x00" + storageKey
		if _, busy := inFlight.LoadOrStore(flightKey, struct{}{}); busy {
			c.JSON(http.StatusConflict, gin.H{
				"error": "a request with this idempotency key is already in progress",
			})
			c.Abort()
			return
		}
		defer inFlight.Delete(flightKey)

		raw, found, err := session.Storage.GetItem(c.Request.Context(), storageKey)
		if err != nil {
			logger.Error("Failed to check idempotency key", zap.Error(err))
			c.Next()
			return
		}

		if found {
			var existing idempotencyRecord
			if err := json.Unmarshal(raw, &existing); err == nil {
				if existing.RequestHash != requestHash {
					// Same key, different payload - conflict
					c.JSON(http.StatusConflict, gin.H{
						"error": "idempotency key conflict: same key used with different payload",
					})
					c.Abort()
					return
				}

				c.Header("Idempotent-Replayed", "true")
				c.Data(existing.Status, "application/json; charset=utf-8", existing.Body)
				c.Abort()
				return
			}
			logger.Warn("Discarding unreadable idempotency record", zap.String("key", idempotencyKey))
		}

		rw := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = rw
		c.Next()

		status := rw.Status()
		if status < 200 || status > 299 {
			return
		}
		record, err := json.Marshal(idempotencyRecord{RequestHash: requestHash, Status: status, Body: rw.body.Bytes()})
		if err != nil {
			logger.Error("Failed to encode idempotency record", zap.Error(err))
			return
		}
		if err := session.Storage.SetItem(c.Request.Context(), storageKey, record); err != nil {
			logger.Warn("Failed to store idempotency record", zap.Error(err), zap.String("key", idempotencyKey))
		}
	}
}
