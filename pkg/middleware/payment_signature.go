package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	httputil "bedbook/pkg/http"
	"bedbook/pkg/logger"
)

const PaymentSignatureHeader = "X-Payment-Signature"

// PaymentSignature verifies the HMAC-SHA256 of the raw body on webhookPath.
// Other paths pass through untouched. An empty secret rejects every
// webhook call.
func PaymentSignature(secret, webhookPath string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != webhookPath {
				next.ServeHTTP(w, r)
				return
			}

			if secret == "" {
				rejectWebhook(w, log, r, "Webhook secret not configured")
				return
			}

			signature := extractSignature(r)
			if signature == "" {
				rejectWebhook(w, log, r, "Missing "+PaymentSignatureHeader+" header")
				return
			}

			body, err := readAndRestoreBody(r)
			if err != nil {
				rejectWebhook(w, log, r, "Failed to read request body")
				return
			}

			if !VerifySignature(body, signature, secret) {
				rejectWebhook(w, log, r, "Invalid webhook signature")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractSignature(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get(PaymentSignatureHeader))
	if signature, found := strings.CutPrefix(header, "sha256="); found {
		return signature
	}
	return header
}

func readAndRestoreBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	return body, nil
}

// Sign returns the hex HMAC-SHA256 of body, as a provider would send it.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifySignature(body []byte, receivedSignature, secret string) bool {
	expected := Sign(body, secret)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(receivedSignature)))
}

func rejectWebhook(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.Warn("Payment webhook verification failed",
		"request_id", logger.RequestIDFromContext(r.Context()),
		"reason", reason,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)

	_ = httputil.WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
}
