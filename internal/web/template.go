package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/consultease/desk-unit/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"kb": func(b uint64) string {
		return fmt.Sprintf("%.1f KiB", float64(b)/1024)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Faculty Desk Unit</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.present { color: green; font-weight: bold; }
.absent { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
pre { background: #f5f5f5; padding: 8px; white-space: pre-wrap; }
</style>
</head>
<body>
<h1>Faculty Desk Unit — {{.Config.FacultyName}}</h1>

<h2>Presence</h2>
<table>
<tr><th>State</th><td class="{{if eq (printf "%s" .Presence) "PRESENT"}}present{{else}}absent{{end}}">{{.Presence}}</td></tr>
<tr><th>Pending streak</th><td>{{.StreakCount}} / {{.Config.DebounceCount}}</td></tr>
{{if not .LastObservation.IsZero}}<tr><th>Last observation</th><td>{{.LastObservation.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>Transitions</h2>
<table>
<tr><th>To PRESENT</th><td>{{.Counts.Present}}</td></tr>
<tr><th>To ABSENT</th><td>{{.Counts.Absent}}</td></tr>
<tr><th>Silence drops</th><td>{{.Counts.SilenceDrops}}</td></tr>
</table>

<h2>Messages</h2>
<table>
<tr><th>Processed</th><td>{{.MessagesProcessed}}</td></tr>
<tr><th>Dropped</th><td>{{.MessagesDropped}}</td></tr>
</table>
{{if .LastMessage}}<pre>{{.LastMessage}}</pre>{{end}}

<h2>Heap</h2>
<table>
<tr><th>Free</th><td>{{kb .HeapFree}}</td></tr>
<tr><th>Minimum ever</th><td>{{kb .HeapMin}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Scan interval</th><td>{{.Config.ScanIntervalMs}}ms</td></tr>
<tr><th>Scan window</th><td>{{.Config.ScanWindowMs}}ms</td></tr>
<tr><th>RSSI threshold</th><td>{{.Config.RSSIThreshold}} dBm</td></tr>
<tr><th>Silence timeout</th><td>{{.Config.SilenceTimeoutMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
