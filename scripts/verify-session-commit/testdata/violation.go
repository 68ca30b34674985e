package violation

import (
	"net/http"

	"github.com/ManuGH/golaundry/internal/session"
)

func Violate(h http.Header) {
	s := session.New()
	s.UpdateAuthToken("e94eca12-854f-409e-b32f-302805ed12d9")
	s.Reset()
	_ = s.AuthToken()

	h["CP_AUTH_TOKEN"] = []string{"x"}
}
