package web

import (
	"fmt"
	"html/template"
	"io"
	"sort"
	"time"
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
	"stateOrUnknown": stateOrUnknown,
	"stateClass": func(s string) string {
		switch stateOrUnknown(s) {
		case "ON":
			return "on"
		case "OFF":
			return "off"
		default:
			return "unknown"
		}
	},
	"boolval": func(b *bool) bool {
		return b != nil && *b
	},
	"join": func(ss []string) string {
		if len(ss) == 0 {
			return "none"
		}
		sorted := append([]string(nil), ss...)
		sort.Strings(sorted)
		out := sorted[0]
		for _, s := range sorted[1:] {
			out += ", " + s
		}
		return out
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Plug Watch</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
button { font-family: monospace; padding: 6px 14px; margin-right: 8px; cursor: pointer; }
#msg { color: red; margin-left: 8px; }
</style>
</head>
<body>
<h1>Plug Watch</h1>

<h2>Plug</h2>
<table>
<tr><th>Desired</th><td class="{{stateClass (printf "%s" .Status.Desired)}}">{{stateOrUnknown (printf "%s" .Status.Desired)}}</td></tr>
<tr><th>Actual</th><td id="plug-state" class="{{stateClass (printf "%s" .Status.Actual)}}">{{stateOrUnknown (printf "%s" .Status.Actual)}}</td></tr>
<tr><th>Monitoring</th><td id="monitoring">{{if .Running}}yes{{else}}no{{end}}</td></tr>
{{if .Status.Sample.BatteryOK}}<tr><th>Battery</th><td>{{.Status.Sample.Battery}}%</td></tr>
{{else}}<tr><th>Battery</th><td class="unknown">unavailable</td></tr>{{end}}
<tr><th>Running apps</th><td>{{join .RunningApps}}</td></tr>
{{if .Status.Err}}<tr><th>Last error</th><td class="disconnected">{{.Status.Err}}</td></tr>{{end}}
{{if .Status.Streak}}<tr><th>Failure streak</th><td>{{.Status.Streak}}</td></tr>{{end}}
</table>

<p>
<button onclick="api('/api/toggle', {})">Toggle plug</button>
<button onclick="api('/api/monitor', {action: 'start'})">Start monitor</button>
<button onclick="api('/api/monitor', {action: 'stop'})">Stop monitor</button>
<span id="msg"></span>
</p>

{{if .MQTTConnected}}
<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if boolval .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if boolval .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.MQTT.Broker}}</td></tr>
</table>
{{end}}

<h2>Config</h2>
<table>
<tr><th>Plug address</th><td>{{.Config.PlugAddr}}</td></tr>
{{if .Config.PlugIndex}}<tr><th>Socket index</th><td>{{.Config.PlugIndex}}</td></tr>{{end}}
<tr><th>Battery threshold</th><td>{{.Config.BatteryThreshold}}%</td></tr>
<tr><th>Apps</th><td>{{join .Config.Apps}}</td></tr>
<tr><th>Poll interval</th><td>{{.Config.PollIntervalSeconds}}s</td></tr>
<tr><th>Autostart</th><td>{{if .Config.AutoStart}}enabled{{else}}disabled{{end}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.Start.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
{{if .HasStatus}}<tr><th>Last cycle</th><td>{{.Status.Time.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>{{end}}
</table>

<p><a href="/index.json">JSON</a> | <a href="/metrics">Metrics</a></p>

<script>
function api(path, body) {
  var msg = document.getElementById("msg");
  msg.textContent = "";
  fetch(path, {
    method: "POST",
    headers: { "Content-Type": "application/json" },
    body: JSON.stringify(body)
  }).then(function(resp) {
    return resp.json().then(function(data) {
      if (!resp.ok) {
        msg.textContent = data.error || ("HTTP " + resp.status);
        return;
      }
      location.reload();
    });
  }).catch(function(err) {
    msg.textContent = String(err);
  });
}
</script>
</body>
</html>
`

func renderHTML(w io.Writer, v viewData) {
	indexTmpl.Execute(w, v)
}
