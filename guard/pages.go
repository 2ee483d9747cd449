package guard

import (
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type loginPageData struct {
	Signin  string
	Detail  string
	Version string
}

type logoutPageData struct {
	Detail    string
	LoginPath string
	Version   string
}

func renderPage(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)
	_ = pageTemplates.ExecuteTemplate(w, name, data)
}
