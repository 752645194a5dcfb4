package schema_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielmunro/rstore/schema"
)

const modelsYAML = `
user:
  id:
    type: integer
    index: true
  full_name:
    type: string
  handle:
    type: string
    unique: true
    maxlength: 100
  email:
    type: string
    required: true
  age:
    type: integer
    default: 0
  articles:
    type: array
    ref: article
  favorite_article:
    type: model
    ref: article
  email_addresses:
    type: array
article:
  id:
    type: integer
    index: true
  title:
    type: string
    default: New article
  url:
    type: string
    unique: true
  article:
    type: string
`

func TestParse(t *testing.T) {
	r, err := schema.Parse([]byte(modelsYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := r.Models()
	if len(names) != 2 {
		t.Fatalf("expected 2 models, got %d", len(names))
	}
	if names[0] != "user" || names[1] != "article" {
		t.Errorf("expected declaration order [user article], got %v", names)
	}

	user, err := r.Definition("user")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(user) != 8 {
		t.Fatalf("expected 8 user properties, got %d", len(user))
	}
	if user[0].Name != "id" || !user[0].Index || user[0].Type != schema.TypeInteger {
		t.Errorf("unexpected id property: %+v", user[0])
	}

	handle, ok := user.Property("handle")
	if !ok {
		t.Fatal("expected handle property")
	}
	if !handle.Unique {
		t.Error("expected handle to be unique")
	}
	if handle.MaxLength != 100 {
		t.Errorf("expected maxlength 100, got %d", handle.MaxLength)
	}

	email, _ := user.Property("email")
	if !email.Required {
		t.Error("expected email to be required")
	}

	age, _ := user.Property("age")
	if age.Default != int64(0) {
		t.Errorf("expected integer default 0, got %#v", age.Default)
	}

	articles, _ := user.Property("articles")
	if articles.Type != schema.TypeArray || articles.Ref != "article" {
		t.Errorf("unexpected articles property: %+v", articles)
	}

	favorite, _ := user.Property("favorite_article")
	if favorite.Type != schema.TypeModel || favorite.Ref != "article" {
		t.Errorf("unexpected favorite_article property: %+v", favorite)
	}

	addresses, _ := user.Property("email_addresses")
	if addresses.Type != schema.TypeArray || addresses.Ref != "" {
		t.Errorf("unexpected email_addresses property: %+v", addresses)
	}

	article, err := r.Definition("article")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	title, _ := article.Property("title")
	if title.Default != "New article" {
		t.Errorf("expected string default, got %#v", title.Default)
	}
}

func TestParse_MissingType(t *testing.T) {
	_, err := schema.Parse([]byte("user:\n  handle:\n    unique: true\n"))
	if err == nil {
		t.Fatal("expected error for property without type")
	}
	if !strings.Contains(err.Error(), "missing type") {
		t.Errorf("expected 'missing type' in error, got %v", err)
	}
}

func TestParse_UnknownField(t *testing.T) {
	_, err := schema.Parse([]byte("user:\n  handle:\n    type: string\n    bogus: true\n"))
	if err == nil {
		t.Fatal("expected error for unknown definition field")
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Errorf("expected field name in error, got %v", err)
	}
}

func TestParse_InvalidFieldValue(t *testing.T) {
	_, err := schema.Parse([]byte("user:\n  handle:\n    type: string\n    maxlength: lots\n"))
	if err == nil {
		t.Fatal("expected error for non-integer maxlength")
	}
}

func TestParse_Empty(t *testing.T) {
	r, err := schema.Parse(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Models()) != 0 {
		t.Errorf("expected empty registry, got %v", r.Models())
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	if err := os.WriteFile(path, []byte(modelsYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := schema.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Has("user") || !r.Has("article") {
		t.Error("expected user and article models")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := schema.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
