package utils

import (
	"os"
	"testing"

	"github.com/quizmeai/quizme-backend/models"
)

func TestResourceKindFromExt(t *testing.T) {
	cases := []struct {
		ext  string
		want models.ResourceKind
	}{
		{".pdf", models.ResourceDocument},
		{"docx", models.ResourceDocument},
		{".md", models.ResourceDocument},
		{".PNG", models.ResourceImage},
		{"jpeg", models.ResourceImage},
	}
	for _, tc := range cases {
		got, err := ResourceKindFromExt(tc.ext)
		if err != nil {
			t.Errorf("ResourceKindFromExt(%q): %v", tc.ext, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ResourceKindFromExt(%q) = %q, want %q", tc.ext, got, tc.want)
		}
	}

	if _, err := ResourceKindFromExt(".exe"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	os.Setenv("JWT_SECRET", "round-trip-secret")

	token, err := GenerateToken("user-123")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("user id = %q", claims.UserID)
	}

	if _, err := VerifyToken(token + "tampered"); err == nil {
		t.Error("tampered token should not verify")
	}
}
