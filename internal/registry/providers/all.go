package providers

import (
	"net/http"

	"github.com/tsukumogami/vx/internal/registry"
)

// All builds every concrete runtime vx ships with, ready to hand to
// registry.NewStaticProvider. client is used for the providers that hit
// a plain HTTP JSON feed (node, go); GitHub-backed providers build
// their own authenticated-or-not client internally (see newGitHubClient).
func All(client *http.Client) []registry.Runtime {
	return []registry.Runtime{
		NewNodeJS(client),
		NewNpm(),
		NewNpx(),
		NewGo(client),
		NewGofmt(),
		NewBun(),
		NewBunx(),
		NewUV(),
		NewUvx(),
		NewGit(),
		NewKubectl(),
		NewJq(),
		NewHadolint(),
	}
}
