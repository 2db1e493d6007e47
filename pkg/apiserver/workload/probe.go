package workload

import (
	"k8s.io/apimachinery/pkg/util/intstr"

	"kubemin-workload/pkg/apiserver/domain/spec"
)

const (
	defaultProbePath = "/"
	defaultProbePort = 80
)

// BuildProbe converts a probe into its manifest form. It returns nil when
// the probe is disabled or no check could be produced from it.
func BuildProbe(p *spec.ProbeSpec) map[string]interface{} {
	if p == nil || !p.Enabled {
		return nil
	}
	out := object{}
	switch p.CheckType() {
	case spec.ProbeExec:
		if p.Exec == nil {
			return nil
		}
		tokens := p.Exec.Command.Tokens()
		if len(tokens) == 0 {
			return nil
		}
		exec := object{}
		setStrings(exec, "command", tokens)
		out["exec"] = exec
	case spec.ProbeTCPSocket:
		if p.TCPSocket == nil || isZeroPort(p.TCPSocket.Port) {
			return nil
		}
		tcp := object{"port": intOrString(p.TCPSocket.Port)}
		setString(tcp, "host", p.TCPSocket.Host)
		out["tcpSocket"] = tcp
	default:
		out["httpGet"] = buildHTTPGet(p.HTTPGet)
	}
	setInt32(out, "initialDelaySeconds", p.InitialDelaySeconds)
	setInt32(out, "periodSeconds", p.PeriodSeconds)
	setInt32(out, "timeoutSeconds", p.TimeoutSeconds)
	setInt32(out, "successThreshold", p.SuccessThreshold)
	setInt32(out, "failureThreshold", p.FailureThreshold)
	return out
}

// buildHTTPGet fills in path / and port 80 when they are missing.
func buildHTTPGet(h *spec.HTTPGetSpec) object {
	if h == nil {
		h = &spec.HTTPGetSpec{}
	}
	port := h.Port
	if isZeroPort(port) {
		port = intstr.FromInt32(defaultProbePort)
	}
	out := object{
		"path": defaultOr(h.Path, defaultProbePath),
		"port": intOrString(port),
	}
	setString(out, "host", h.Host)
	setString(out, "scheme", h.Scheme)
	return out
}

// ParseProbe recovers a probe from its manifest form. The check type is
// inferred from the block present, preferring exec, then tcpSocket, and
// defaulting to httpGet. A nil block yields nil.
func ParseProbe(m map[string]interface{}) *spec.ProbeSpec {
	if m == nil {
		return nil
	}
	p := &spec.ProbeSpec{
		Enabled:             true,
		InitialDelaySeconds: getInt32(m, "initialDelaySeconds"),
		PeriodSeconds:       getInt32(m, "periodSeconds"),
		TimeoutSeconds:      getInt32(m, "timeoutSeconds"),
		SuccessThreshold:    getInt32(m, "successThreshold"),
		FailureThreshold:    getInt32(m, "failureThreshold"),
	}
	switch {
	case m["exec"] != nil:
		p.Type = spec.ProbeExec
		p.Exec = parseExec(getObject(m, "exec"))
	case m["tcpSocket"] != nil:
		p.Type = spec.ProbeTCPSocket
		tcp := getObject(m, "tcpSocket")
		p.TCPSocket = &spec.TCPSocketSpec{Host: getString(tcp, "host")}
		if port := getIntOrString(tcp, "port"); port != nil {
			p.TCPSocket.Port = *port
		}
	default:
		p.Type = spec.ProbeHTTPGet
		p.HTTPGet = parseHTTPGet(getObject(m, "httpGet"))
	}
	return p
}

func parseHTTPGet(m object) *spec.HTTPGetSpec {
	if m == nil {
		return nil
	}
	h := &spec.HTTPGetSpec{
		Path:   getString(m, "path"),
		Host:   getString(m, "host"),
		Scheme: getString(m, "scheme"),
	}
	if port := getIntOrString(m, "port"); port != nil {
		h.Port = *port
	}
	return h
}

func parseExec(m object) *spec.ExecSpec {
	return &spec.ExecSpec{Command: spec.CommandTextFromTokens(getStrings(m, "command"))}
}

func isZeroPort(p intstr.IntOrString) bool {
	if p.Type == intstr.String {
		return p.StrVal == ""
	}
	return p.IntVal == 0
}
