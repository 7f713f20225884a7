package export

import (
	"strings"
	"testing"
)

func TestBuildManifestEmptyOrganization(t *testing.T) {
	root := &Node{Title: "Empty Course"}
	root.AddChild(&Node{Title: "Section with nothing"}).AddChild(&Node{Title: "Lesson with nothing"})

	out, err := BuildManifest(root)
	if err != nil {
		t.Fatalf("empty course must still build: %v", err)
	}
	manifest := string(out)
	if !strings.Contains(manifest, "<title>Empty Course</title>") {
		t.Errorf("missing course title:\n%s", manifest)
	}
	if strings.Contains(manifest, "<item") {
		t.Errorf("empty branches must be pruned:\n%s", manifest)
	}
	if strings.Contains(manifest, "<resource ") {
		t.Errorf("no resources expected:\n%s", manifest)
	}
}

func TestBuildManifestPrunesBottomUp(t *testing.T) {
	root := &Node{Title: "Course"}
	keptSection := root.AddChild(&Node{Title: "Kept Section"})
	keptLesson := keptSection.AddChild(&Node{Title: "Kept Lesson"})
	keptLesson.AddChild(&Node{Title: "Deck", ResourceID: NewResourceID(), Href: "d1/index.html"})
	keptSection.AddChild(&Node{Title: "Empty Lesson"})
	root.AddChild(&Node{Title: "Empty Section"}).AddChild(&Node{Title: "Another Empty Lesson"})

	out, err := BuildManifest(root)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	manifest := string(out)

	for _, want := range []string{"Kept Section", "Kept Lesson", "Deck", "d1/index.html"} {
		if !strings.Contains(manifest, want) {
			t.Errorf("expected %q in manifest:\n%s", want, manifest)
		}
	}
	for _, unwanted := range []string{"Empty Lesson", "Empty Section", "Another Empty Lesson"} {
		if strings.Contains(manifest, unwanted) {
			t.Errorf("pruned branch %q leaked into manifest:\n%s", unwanted, manifest)
		}
	}
}

func TestBuildManifestResourceEntries(t *testing.T) {
	root := &Node{Title: "Course"}
	lesson := root.AddChild(&Node{Title: "S"}).AddChild(&Node{Title: "L"})
	lesson.AddChild(&Node{
		Title:      "Quiz",
		ResourceID: "RES-fixed",
		Href:       "q1/index.html",
		AssetFiles: []string{"q1/assets/img_001.png"},
	})

	out, err := BuildManifest(root)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	manifest := string(out)

	for _, want := range []string{
		`identifierref="RES-fixed"`,
		`type="webcontent"`,
		`adlcp:scormType="sco"`,
		`href="q1/index.html"`,
		`<file href="q1/assets/img_001.png"`,
		"2004 4th Edition",
		"ADL SCORM",
	} {
		if !strings.Contains(manifest, want) {
			t.Errorf("expected %q in manifest:\n%s", want, manifest)
		}
	}
}

func TestBuildManifestFreshIdentifiers(t *testing.T) {
	build := func() string {
		root := &Node{Title: "Course"}
		root.AddChild(&Node{Title: "S"}).AddChild(&Node{Title: "L"}).
			AddChild(&Node{Title: "Doc", ResourceID: NewResourceID(), Href: "d/index.html"})
		out, err := BuildManifest(root)
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		return string(out)
	}

	if build() == build() {
		t.Errorf("repeated builds must not share identifiers")
	}
}
