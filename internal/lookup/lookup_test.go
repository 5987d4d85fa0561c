package lookup_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"giftbox-manager/internal/lookup"

	"go.uber.org/zap"
)

func TestCEPClient_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/01310100/"):
			w.Write([]byte(`{"logradouro":"Avenida Paulista","bairro":"Bela Vista","localidade":"São Paulo","uf":"SP"}`))
		case strings.HasPrefix(r.URL.Path, "/99999999/"):
			w.Write([]byte(`{"erro": true}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := lookup.NewCEPClient(srv.URL, zap.NewNop())
	ctx := context.Background()

	res := c.Lookup(ctx, "01310100")
	if !res.Success {
		t.Fatalf("lookup failed: %s", res.Message)
	}
	if res.Address.City != "São Paulo" || res.Address.State != "SP" {
		t.Errorf("unexpected address: %+v", res.Address)
	}

	if res := c.Lookup(ctx, "99999999"); res.Success || !strings.Contains(res.Message, "not found") {
		t.Errorf("unknown code should report not found, got %+v", res)
	}

	for _, bad := range []string{"", "123", "abcdefgh", "123456789"} {
		if res := c.Lookup(ctx, bad); res.Success {
			t.Errorf("invalid code %q should fail validation", bad)
		}
	}
}

func TestCEPClient_ServiceDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := lookup.NewCEPClient(srv.URL, zap.NewNop())
	res := c.Lookup(context.Background(), "01310100")
	if res.Success {
		t.Error("downstream failure should not report success")
	}
	if res.Message == "" {
		t.Error("downstream failure should carry a message")
	}
}

func TestRegistryClient_Fetch(t *testing.T) {
	const key = "35240114200166000187550010000000046550000046"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, key) {
			w.Write([]byte("<NFe><infNFe></infNFe></NFe>"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := lookup.NewRegistryClient(srv.URL, zap.NewNop())
	ctx := context.Background()

	res := c.Fetch(ctx, key)
	if !res.Success {
		t.Fatalf("fetch failed: %s", res.Message)
	}
	if len(res.Document) == 0 {
		t.Error("expected document bytes")
	}

	if res := c.Fetch(ctx, "1234"); res.Success || !strings.Contains(res.Message, "44 digits") {
		t.Errorf("short key should fail validation, got %+v", res)
	}

	other := strings.Repeat("9", 44)
	if res := c.Fetch(ctx, other); res.Success || !strings.Contains(res.Message, "manually") {
		t.Errorf("missing document should point at manual upload, got %+v", res)
	}
}

func TestRegistryClient_Unconfigured(t *testing.T) {
	c := lookup.NewRegistryClient("", zap.NewNop())
	res := c.Fetch(context.Background(), strings.Repeat("1", 44))
	if res.Success {
		t.Error("unconfigured registry should never succeed")
	}
	if !strings.Contains(res.Message, "manually") {
		t.Errorf("message should offer the manual path, got %q", res.Message)
	}
}
