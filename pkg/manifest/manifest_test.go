package manifest

import (
	"testing"

	"github.com/cuemby/warren/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAllSingleDocument(t *testing.T) {
	data := []byte(`
kind: Deployment
spec:
  name: nginx
  image: nginx:alpine
  replicas: 3
  resources:
    cpu: 500m
    memory: 256Mi
`)
	deploys, err := ParseAll(data)
	require.NoError(t, err)
	require.Len(t, deploys, 1)

	d := deploys[0]
	assert.Equal(t, "nginx", d.Name)
	assert.Equal(t, "nginx:alpine", d.Image)
	assert.Equal(t, 3, d.Replicas)
	assert.Equal(t, int64(500), d.Resources.CPUMillis)
	assert.Equal(t, int64(256), d.Resources.MemoryMB)
}

func TestParseAllMultipleDocuments(t *testing.T) {
	data := []byte(`
kind: Deployment
spec:
  name: web
  image: web:latest
---
kind: Deployment
spec:
  name: worker
  image: worker:latest
  replicas: 2
`)
	deploys, err := ParseAll(data)
	require.NoError(t, err)
	require.Len(t, deploys, 2)
	assert.Equal(t, "web", deploys[0].Name)
	assert.Equal(t, 1, deploys[0].Replicas)
	assert.Equal(t, "worker", deploys[1].Name)
	assert.Equal(t, 2, deploys[1].Replicas)
}

func TestParseAllPreservesExplicitZeroReplicas(t *testing.T) {
	data := []byte(`
kind: Deployment
spec:
  name: idle
  image: idle:latest
  replicas: 0
`)
	deploys, err := ParseAll(data)
	require.NoError(t, err)
	require.Len(t, deploys, 1)
	assert.Equal(t, 0, deploys[0].Replicas)
}

func TestParseAllRejectsUnknownKind(t *testing.T) {
	data := []byte(`
kind: Secret
spec:
  name: creds
`)
	_, err := ParseAll(data)
	require.Error(t, err)
	assert.True(t, store.IsKind(err, store.KindInvalidSpec))
}

func TestParseAllRequiresNameAndImage(t *testing.T) {
	_, err := ParseAll([]byte("kind: Deployment\nspec:\n  name: nginx\n"))
	require.Error(t, err)

	_, err = ParseAll([]byte("kind: Deployment\nspec:\n  image: nginx:alpine\n"))
	require.Error(t, err)
}

func TestParseCPUGrammar(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"100m", 100, false},
		{"2", 2000, false},
		{"", 0, false},
		{"1.5", 0, true},
		{"500m extra", 0, true},
	}
	for _, c := range cases {
		got, err := parseCPU(c.in)
		if c.wantErr {
			assert.Error(t, err, c.in)
			continue
		}
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseMemoryGrammar(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"512Mi", 512, false},
		{"1Gi", 1024, false},
		{"128", 128, false},
		{"", 0, false},
		{"2.5Gi", 0, true},
	}
	for _, c := range cases {
		got, err := parseMemory(c.in)
		if c.wantErr {
			assert.Error(t, err, c.in)
			continue
		}
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseAllSkipsBlankDocuments(t *testing.T) {
	data := []byte(`
kind: Deployment
spec:
  name: nginx
  image: nginx:alpine
---
---
`)
	deploys, err := ParseAll(data)
	require.NoError(t, err)
	require.Len(t, deploys, 1)
}
