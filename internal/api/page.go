package api

import (
	"encoding/json"
	"html/template"
	"net/http"

	log "github.com/sirupsen/logrus"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Daily Wallpaper</title>
<style>
body { font-family: sans-serif; margin: 2em; }
pre { background: #f4f4f4; padding: 1em; overflow-x: auto; }
</style>
</head>
<body>
<h1>Daily Wallpaper</h1>
<h2>Current wallpaper</h2>
{{if .AppliedURL}}<p><a href="{{.AppliedURL}}">{{.AppliedURL}}</a></p>{{else}}<p>None applied yet.</p>{{end}}
{{with .Override}}<p>Temporary wallpaper <a href="{{.URL}}">{{.URL}}</a> until {{.Expiry.Format "2006-01-02 15:04:05"}}.</p>{{end}}
<h2>Config</h2>
{{if .ConfigJSON}}<pre>{{.ConfigJSON}}</pre>{{else}}<p>Config not loaded.</p>{{end}}
<h2>Logs</h2>
<pre>{{range .Logs}}{{.}}
{{end}}</pre>
</body>
</html>
`))

type indexData struct {
	StatusResponse
	ConfigJSON string
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	data := indexData{StatusResponse: s.status()}
	if data.Config != nil {
		raw, err := json.MarshalIndent(data.Config, "", "  ")
		if err == nil {
			data.ConfigJSON = string(raw)
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		log.WithError(err).Warn("render status page")
	}
}
