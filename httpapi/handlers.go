package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"listscribe"
	"listscribe/auth"

	"github.com/gin-gonic/gin"
)

const msgProcessingFailed = "An error occurred while processing the image."

type transcribeRequest struct {
	ImagePath  string   `json:"imagePath"`
	ImagePaths []string `json:"imagePaths"`
}

// images returns the single image first, then any batch entries.
func (r transcribeRequest) images() []string {
	var out []string
	if r.ImagePath != "" {
		out = append(out, r.ImagePath)
	}
	return append(out, r.ImagePaths...)
}

func transcribe(t listscribe.Transcriber) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req transcribeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image is too large"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with imagePath or imagePaths"})
			return
		}

		images := req.images()
		if len(images) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no image provided"})
			return
		}
		for i, img := range images {
			if _, err := listscribe.DecodeImage(img); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("image %d: %v", i, err)})
				return
			}
		}

		res, err := t.Run(c.Request.Context(), images...)
		if err != nil {
			slog.Error("HTTP: Transcription failed", "error", err, "images", len(images))
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgProcessingFailed})
			return
		}

		c.JSON(http.StatusOK, res)
	}
}

func authenticate(v auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetString(gin.AuthUserKey)

		cred, err := v.Issue(c.Request.Context(), user)
		if err != nil {
			slog.Error("HTTP: Could not issue credential", "error", err, "user", user)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
			return
		}
		if cred.Cookie != nil {
			http.SetCookie(c.Writer, cred.Cookie)
		}

		slog.Info("HTTP: Issued credential", "user", user, "expires_at", cred.ExpiresAt)
		c.JSON(http.StatusOK, gin.H{"token": cred.Token})
	}
}

// static serves files from dir for unmatched GET and HEAD requests.
// Directories resolve to their index.html.
func static(dir string) gin.HandlerFunc {
	fs := http.FileServer(http.Dir(dir))
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}

		name := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+c.Request.URL.Path)))
		info, err := os.Stat(name)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		if info.IsDir() {
			if _, err := os.Stat(filepath.Join(name, "index.html")); err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
		}
		c.Status(http.StatusOK)
		fs.ServeHTTP(c.Writer, c.Request)
	}
}
