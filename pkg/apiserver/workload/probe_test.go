package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"

	"kubemin-workload/pkg/apiserver/domain/spec"
)

func TestBuildProbeDisabled(t *testing.T) {
	assert.Nil(t, BuildProbe(nil))
	assert.Nil(t, BuildProbe(&spec.ProbeSpec{Enabled: false, Type: spec.ProbeTCPSocket,
		TCPSocket: &spec.TCPSocketSpec{Port: intstr.FromInt32(3306)}}))
}

func TestBuildProbeHTTPGetDefaults(t *testing.T) {
	got := BuildProbe(&spec.ProbeSpec{Enabled: true, PeriodSeconds: ptr.To[int32](10)})
	require.Equal(t, map[string]interface{}{
		"httpGet":       map[string]interface{}{"path": "/", "port": int64(80)},
		"periodSeconds": int64(10),
	}, got)
}

func TestBuildProbeExec(t *testing.T) {
	got := BuildProbe(&spec.ProbeSpec{
		Enabled: true,
		Type:    spec.ProbeExec,
		Exec:    &spec.ExecSpec{Command: "cat\n  /tmp/healthy \n\n"},
	})
	require.Equal(t, map[string]interface{}{
		"exec": map[string]interface{}{"command": []interface{}{"cat", "/tmp/healthy"}},
	}, got)

	assert.Nil(t, BuildProbe(&spec.ProbeSpec{Enabled: true, Type: spec.ProbeExec, Exec: &spec.ExecSpec{Command: " \n "}}),
		"an exec probe without a command has no check")
	assert.Nil(t, BuildProbe(&spec.ProbeSpec{Enabled: true, Type: spec.ProbeTCPSocket}))
}

func TestBuildProbeOnlyUsesTaggedCheck(t *testing.T) {
	got := BuildProbe(&spec.ProbeSpec{
		Enabled:   true,
		Type:      spec.ProbeTCPSocket,
		HTTPGet:   &spec.HTTPGetSpec{Path: "/healthz", Port: intstr.FromInt32(8080)},
		TCPSocket: &spec.TCPSocketSpec{Port: intstr.FromString("mysql")},
	})
	require.NotNil(t, got)
	assert.NotContains(t, got, "httpGet")
	assert.Equal(t, map[string]interface{}{"port": "mysql"}, got["tcpSocket"])
}

func TestProbeRoundTrip(t *testing.T) {
	cases := map[string]*spec.ProbeSpec{
		"httpGet": {
			Enabled:             true,
			Type:                spec.ProbeHTTPGet,
			HTTPGet:             &spec.HTTPGetSpec{Path: "/healthz", Port: intstr.FromInt32(8080), Scheme: "HTTPS"},
			InitialDelaySeconds: ptr.To[int32](5),
			TimeoutSeconds:      ptr.To[int32](2),
		},
		"exec": {
			Enabled:          true,
			Type:             spec.ProbeExec,
			Exec:             &spec.ExecSpec{Command: "sh\n-c\npg_isready -U postgres"},
			FailureThreshold: ptr.To[int32](6),
			SuccessThreshold: ptr.To[int32](1),
		},
		"tcpSocket with named port": {
			Enabled:       true,
			Type:          spec.ProbeTCPSocket,
			TCPSocket:     &spec.TCPSocketSpec{Port: intstr.FromString("grpc")},
			PeriodSeconds: ptr.To[int32](15),
		},
	}
	for name, probe := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, probe, ParseProbe(BuildProbe(probe)))
		})
	}
}

func TestParseProbeInfersType(t *testing.T) {
	cases := map[string]struct {
		in   map[string]interface{}
		want spec.ProbeType
	}{
		"exec wins over everything": {
			in: map[string]interface{}{
				"exec":      map[string]interface{}{"command": []interface{}{"true"}},
				"tcpSocket": map[string]interface{}{"port": int64(80)},
				"httpGet":   map[string]interface{}{"path": "/"},
			},
			want: spec.ProbeExec,
		},
		"tcpSocket wins over httpGet": {
			in: map[string]interface{}{
				"tcpSocket": map[string]interface{}{"port": float64(6379)},
				"httpGet":   map[string]interface{}{"path": "/"},
			},
			want: spec.ProbeTCPSocket,
		},
		"no check defaults to httpGet": {
			in:   map[string]interface{}{"periodSeconds": float64(3)},
			want: spec.ProbeHTTPGet,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p := ParseProbe(tc.in)
			require.NotNil(t, p)
			assert.True(t, p.Enabled)
			assert.Equal(t, tc.want, p.Type)
		})
	}
}

func TestParseProbeWithoutCheckRebuildsWithDefaults(t *testing.T) {
	p := ParseProbe(map[string]interface{}{"periodSeconds": float64(3)})
	require.Equal(t, ptr.To[int32](3), p.PeriodSeconds)

	rebuilt := BuildProbe(p)
	assert.Equal(t, map[string]interface{}{"path": "/", "port": int64(80)}, rebuilt["httpGet"])
}

func TestParseProbeNil(t *testing.T) {
	assert.Nil(t, ParseProbe(nil))
}
