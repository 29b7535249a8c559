// Package buildinfo exposes build information for metacall-deploy.
//
// Values are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/metacall-deploy-go/internal/infra/buildinfo.Version=v0.4.0 \
//	  -X github.com/yndnr/metacall-deploy-go/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// The version also goes into the User-Agent of dashboard requests.
package buildinfo
