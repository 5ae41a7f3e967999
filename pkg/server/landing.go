package server

import (
	"bytes"
	"html/template"
	"net/http"

	"mercator-hq/jenkins-exporter/pkg/telemetry/health"
)

var landingTemplate = template.Must(template.New("landing").Parse(`<!DOCTYPE html>
<html>
<head><title>Jenkins Exporter</title></head>
<body>
<h1>Jenkins Exporter</h1>
<p>Version {{.Version.Version}} (revision {{.Version.Revision}}, {{.Version.GoVersion}})</p>
<ul>
<li><a href="{{.MetricsPath}}">Metrics</a></li>
<li><a href="` + health.LivenessPath + `">Liveness</a></li>
<li><a href="` + health.ReadinessPath + `">Readiness</a></li>
<li><a href="` + health.VersionPath + `">Version</a></li>
</ul>
</body>
</html>
`))

// landingPage renders once and serves the cached page.
func landingPage(metricsPath string, info health.VersionInfo) http.HandlerFunc {
	var buf bytes.Buffer
	err := landingTemplate.Execute(&buf, struct {
		MetricsPath string
		Version     health.VersionInfo
	}{metricsPath, info})
	if err != nil {
		panic(err)
	}
	page := buf.Bytes()

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if r.Method != http.MethodHead {
			_, _ = w.Write(page)
		}
	}
}
