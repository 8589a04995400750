package server

import (
	"html/template"
	"net/http"
)

// galleryView is the data handed to the gallery template
type galleryView struct {
	Token        string
	SourceURL    string
	DisplayName  string
	Images       []string
	AssetsHidden bool
}

// errorView is the data handed to the error template
type errorView struct {
	Title   string
	Message string
}

var homeTemplate = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html>
<head><title>Gallery Grabber</title></head>
<body>
<h2>Gallery Grabber</h2>
<form method="post" action="/scan">
  <input name="url" type="text" size="60" placeholder="Paste gallery URL">
  <input name="name" type="text" size="24" placeholder="Archive name (optional)">
  <label><input name="hide_assets" type="checkbox" value="1"> Hide site assets</label>
  <button type="submit">Scan</button>
</form>
</body>
</html>
`))

var galleryTemplate = template.Must(template.New("gallery").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.DisplayName}} — Gallery Grabber</title></head>
<body>
<h2>{{.DisplayName}}</h2>
<p>Scanned from <a href="{{.SourceURL}}">{{.SourceURL}}</a>{{if .AssetsHidden}} (site assets hidden){{end}}</p>
{{if .Images}}
<p>{{len .Images}} image(s) found. <a href="/download/{{.Token}}">Download all as zip</a></p>
<ul>
{{range $i, $url := .Images}}
  <li><a href="/image/{{$.Token}}/{{$i}}">{{$url}}</a></li>
{{end}}
</ul>
{{else}}
<p>No images were found on this page.</p>
{{end}}
<p><a href="/">Scan another page</a></p>
</body>
</html>
`))

var errorTemplate = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}} — Gallery Grabber</title></head>
<body>
<h2>{{.Title}}</h2>
<p>{{.Message}}</p>
<p><a href="/">Back to scan</a></p>
</body>
</html>
`))

func (s *Server) render(w http.ResponseWriter, status int, tmpl *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.WithError(err).Error("template render failed")
	}
}

func (s *Server) renderError(w http.ResponseWriter, status int, title, message string) {
	s.render(w, status, errorTemplate, errorView{Title: title, Message: message})
}
