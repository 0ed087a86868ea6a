package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/IshaanNene/marsboard/internal/config"
	"github.com/IshaanNene/marsboard/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

type indexData struct {
	Mars        *types.ScrapeResult
	Facts       template.HTML
	LastSuccess time.Time
	Version     string
}

type errorData struct {
	Status  int
	Message string
	Detail  string
	Version string
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"since": func(t time.Time) string {
			return time.Since(t).Round(time.Second).String()
		},
	}).ParseFS(templateFS, "templates/*.html")
}

// render buffers the page; a template failure yields a plain 500.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("render template", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) renderError(w http.ResponseWriter, status int, message string, err error) {
	data := errorData{
		Status:  status,
		Message: message,
		Version: config.Version,
	}
	if err != nil {
		data.Detail = err.Error()
	}
	s.render(w, status, "error.html", data)
}
