package github

import (
	"errors"
	"testing"

	"github.com/icebob/kantab-sub001/internal/auth"
	"github.com/icebob/kantab-sub001/internal/auth/provider"
)

func TestNormalize(t *testing.T) {
	raw := auth.RawProfile{
		"id":         float64(583231), // json numbers decode as float64
		"login":      "octocat",
		"name":       "The Octocat",
		"email":      "octocat@github.com",
		"avatar_url": "https://avatars.githubusercontent.com/u/583231",
	}

	p, err := normalize(raw)
	if err != nil {
		t.Fatalf("normalize() error = %v", err)
	}
	if p.ExternalID != "583231" {
		t.Errorf("ExternalID = %q, want %q", p.ExternalID, "583231")
	}
	if p.FullName != "The Octocat" {
		t.Errorf("FullName = %q, want %q", p.FullName, "The Octocat")
	}
	if p.Provider != "github" {
		t.Errorf("Provider = %q, want github", p.Provider)
	}
}

func TestNormalize_FallsBackToLogin(t *testing.T) {
	p, err := normalize(auth.RawProfile{"id": float64(1), "login": "octocat"})
	if err != nil {
		t.Fatalf("normalize() error = %v", err)
	}
	if p.FullName != "octocat" {
		t.Errorf("FullName = %q, want login fallback", p.FullName)
	}
}

func TestNormalize_MissingID(t *testing.T) {
	_, err := normalize(auth.RawProfile{"login": "octocat"})
	if err == nil {
		t.Fatal("normalize() expected error for profile without id")
	}
	if !errors.Is(err, provider.ErrProfileNormalization) {
		t.Errorf("normalize() error = %v, want ErrProfileNormalization", err)
	}
}
