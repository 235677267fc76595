package dashboard

const layoutHTML = `{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css">
</head>
<body>
    <nav class="navbar navbar-dark bg-dark mb-3">
        <div class="container-fluid">
            <a class="navbar-brand" href="/">{{.Title}}</a>
            <div>
                <a class="btn btn-sm btn-outline-light" href="/">Overview</a>
                <a class="btn btn-sm btn-outline-light" href="/logs">Logs</a>
            </div>
        </div>
    </nav>
    <div class="container-fluid">
    {{if .Error}}<div class="alert alert-danger" id="error">{{.Error}}</div>{{end}}
{{end}}
{{define "foot"}}
    <footer class="text-muted small my-3" id="footer">
        {{if .UpdatedAt.IsZero}}Waiting for first refresh{{else}}Updated {{.UpdatedAt.Format "2006-01-02 15:04:05"}}{{end}}
        &middot; {{if .Interval}}refresh every {{.Interval}}{{else}}auto refresh disabled{{end}}
    </footer>
    </div>
</body>
</html>{{end}}`

const overviewHTML = `{{template "head" .}}
    {{with .Overview}}
    <h2 id="global">
        <span class="{{badgeClass (level .Status)}}">{{level .Status}}</span>
        <span class="{{textClass (level .Status)}}">{{.Status}}</span>
    </h2>
    {{range .Groups}}
    <div class="card mb-3 group" data-group="{{.Name}}">
        <div class="card-header {{bgClass (level .Status)}}">
            <strong>{{.Name}}</strong>
            <span class="{{badgeClass (level .Status)}} float-end">{{level .Status}}</span>
        </div>
        <table class="table table-sm mb-0">
            <thead><tr><th>Host</th><th>Status</th><th>Probes</th></tr></thead>
            <tbody>
            {{range .Hosts}}
            <tr class="host {{statusRowClass .Status}}" data-host="{{.Name}}">
                <td>{{.Name}}{{if not .IsAlive}} <span class="badge bg-dark">down</span>{{end}}</td>
                <td><span class="{{badgeClass (level .Status)}}">{{.Status}}</span></td>
                <td>
                {{range .Probes}}<a class="btn btn-sm probe {{btnClass (level .Status)}}" title="{{.Message}}">{{.Name}}</a> {{end}}
                </td>
            </tr>
            {{end}}
            </tbody>
        </table>
    </div>
    {{end}}
    {{else}}
    <p class="text-muted" id="empty">No data yet.</p>
    {{end}}
    <script>
        (function () {
            var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
            ws.onmessage = function () { location.reload(); };
        })();
    </script>
{{template "foot" .}}`

const logsHTML = `{{template "head" .}}
    <form class="mb-2" method="get" action="/logs">
        <select name="level" class="form-select form-select-sm w-auto d-inline" onchange="this.form.submit()">
            <option value="">all levels</option>
            {{$cur := .Level}}
            {{range .Levels}}<option value="{{.}}"{{if eq (print .) $cur}} selected{{end}}>{{.}}</option>{{end}}
        </select>
    </form>
    <table class="table table-sm" id="logs">
        <thead><tr><th>Date</th><th>Level</th><th>Group</th><th>Host</th><th>Probe</th><th>Message</th></tr></thead>
        <tbody>
        {{range .Logs}}
        <tr class="log {{logRowClass .Level}}">
            <td>{{.Date}}</td>
            <td>{{logLevelName .Level}}</td>
            <td>{{.Group}}</td>
            <td>{{.Host}}</td>
            <td>{{.Probe}}</td>
            <td>{{.Message}}</td>
        </tr>
        {{end}}
        </tbody>
    </table>
{{template "foot" .}}`
