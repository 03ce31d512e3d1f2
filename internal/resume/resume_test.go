package resume

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/amishk599/jobsnap/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExtractSkills(t *testing.T) {
	text := `Senior engineer. Built microservices in Go and Python on AWS,
	deployed with Docker and Kubernetes. Frontend work in React.js and C++ tooling.
	Ongoing interest in machine learning.`

	got := ExtractSkills(text)
	want := []string{
		"python", "react", "go", "docker", "kubernetes", "aws",
		"machine learning", "microservices", "react.js",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractSkills =\n%v\nwant\n%v", got, want)
	}
}

func TestExtractSkills_WholeWordsOnly(t *testing.T) {
	got := ExtractSkills("Gopher who loves javascripting and restaurants")
	if len(got) != 0 {
		t.Errorf("expected no skills from partial words, got %v", got)
	}
}

func TestExtractSkills_Capped(t *testing.T) {
	text := "javascript python java react node nodejs express mongodb mysql postgresql " +
		"sql html css typescript angular vue php ruby go rust swift kotlin docker"
	if got := ExtractSkills(text); len(got) != MaxSkills {
		t.Errorf("expected %d skills, got %d", MaxSkills, len(got))
	}
}

func TestExtractText_Plain(t *testing.T) {
	got, err := ExtractText("text/plain; charset=utf-8", []byte("  Go developer \n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Go developer" {
		t.Errorf("got %q", got)
	}
}

func TestExtractText_Errors(t *testing.T) {
	if _, err := ExtractText("image/png", []byte("x")); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
	if _, err := ExtractText(MIMEText, []byte("   ")); !errors.Is(err, ErrNoText) {
		t.Errorf("expected ErrNoText, got %v", err)
	}
	if _, err := ExtractText(MIMEPDF, []byte("not a pdf")); err == nil {
		t.Error("expected error for corrupt pdf")
	}
}

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body + `</w:body></w:document>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestExtractText_Docx(t *testing.T) {
	data := buildDocx(t, `<w:p><w:r><w:t>Rust &amp; Docker</w:t></w:r></w:p><w:p><w:r><w:t>GraphQL APIs</w:t></w:r></w:p>`)

	got, err := ExtractText(MIMEDOCX, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Rust & Docker\nGraphQL APIs" {
		t.Errorf("got %q", got)
	}
}

func TestDetectMIME(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"cv.PDF", nil, MIMEPDF},
		{"cv.docx", nil, MIMEDOCX},
		{"cv.txt", nil, MIMEText},
		{"cv", []byte("%PDF-1.4\n"), MIMEPDF},
		{"cv", []byte("plain words"), MIMEText},
	}
	for _, tc := range tests {
		if got := DetectMIME(tc.name, tc.data); got != tc.want {
			t.Errorf("DetectMIME(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

type recordingProfiles struct {
	saved []model.SkillProfile
}

func (r *recordingProfiles) SaveProfile(_ context.Context, p model.SkillProfile) error {
	r.saved = append(r.saved, p)
	return nil
}

func (r *recordingProfiles) Profile(context.Context, string) (model.SkillProfile, error) {
	return model.SkillProfile{}, model.ErrProfileNotFound
}

func TestImporter_SavesExtractedSkills(t *testing.T) {
	profiles := &recordingProfiles{}
	im := NewImporter(profiles, discardLogger())

	got, err := im.Import(context.Background(), "u1", MIMEText, []byte("Python, Django and Redis"))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if want := []string{"python", "redis"}; !reflect.DeepEqual(got.Skills, want) {
		t.Errorf("Skills = %v, want %v", got.Skills, want)
	}
	if len(profiles.saved) != 1 || profiles.saved[0].UserID != "u1" {
		t.Errorf("unexpected saves: %+v", profiles.saved)
	}
}

func TestImporter_RejectsEmptyResume(t *testing.T) {
	profiles := &recordingProfiles{}
	im := NewImporter(profiles, discardLogger())

	if _, err := im.Import(context.Background(), "u1", MIMEText, nil); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
	if len(profiles.saved) != 0 {
		t.Error("empty résumé should not replace the profile")
	}
}
