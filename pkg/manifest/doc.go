/*
Package manifest decodes `warren apply` YAML files into store-ready
Deployment values.

A manifest file is a sequence of `---`-separated documents, each shaped
like:

	kind: Deployment
	spec:
	  name: nginx
	  image: nginx:alpine
	  replicas: 3
	  resources:
	    cpu: 500m
	    memory: 256Mi

ParseResources implements the cpu/memory grammar: cpu accepts a bare
integer core count or a millicore value with an `m` suffix; memory
accepts a bare integer megabyte count or a value suffixed `Mi`/`Gi`.
Fractional values are rejected rather than silently truncated.
*/
package manifest
