package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestLocalPathStaysInsideRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "site")
	paths := []string{
		"/",
		"/index.html",
		"/../../etc/passwd",
		"/a/../../b",
		"/..",
		"/./././x",
		"//double//slash.html",
		"/a/b/",
		"/..\\..\\windows",
	}
	for _, p := range paths {
		local, err := localPath(root, p)
		if err != nil {
			t.Errorf("%s: unexpected error %v", p, err)
			continue
		}
		if local != root && !strings.HasPrefix(local, root+string(filepath.Separator)) {
			t.Errorf("%s resolved to %s, outside %s", p, local, root)
		}
	}
}

func TestResolveResource(t *testing.T) {
	convey.Convey("Given a document root with an error document", t, func() {
		root := writeSite(t, map[string]string{
			"index.html":      "<h1>home</h1>",
			"404.html":        "<h1>missing</h1>",
			"about.html":      "<p>über uns</p>",
			"docs/index.html": "docs home",
			"docs/page.html":  "docs page",
		})

		convey.Convey("An existing file is served byte for byte", func() {
			res, err := resolveResource(root, "/about.html")
			convey.So(err, convey.ShouldBeNil)
			convey.So(res.Status, convey.ShouldEqual, 200)
			convey.So(string(res.Body), convey.ShouldEqual, "<p>über uns</p>")
		})

		convey.Convey("/ is the same as /index.html", func() {
			a, err := resolveResource(root, "/")
			convey.So(err, convey.ShouldBeNil)
			b, _ := resolveResource(root, "/index.html")
			convey.So(a, convey.ShouldResemble, b)
		})

		convey.Convey("Directories get their default document", func() {
			for _, p := range []string{"/docs", "/docs/"} {
				res, err := resolveResource(root, p)
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(res.Body), convey.ShouldEqual, "docs home")
			}
		})

		convey.Convey("A missing file serves 404.html with status 404", func() {
			for _, p := range []string{"/nope.html", "/index.html/sub", "/docs/missing/"} {
				res, err := resolveResource(root, p)
				convey.So(errors.Is(err, errFileNotFound), convey.ShouldBeTrue)
				convey.So(res.Status, convey.ShouldEqual, 404)
				convey.So(string(res.Body), convey.ShouldEqual, "<h1>missing</h1>")
			}
		})

		convey.Convey("Traversal never leaves the root", func() {
			outside := filepath.Join(filepath.Dir(root), "secret.html")
			convey.So(os.WriteFile(outside, []byte("secret"), 0o644), convey.ShouldBeNil)

			res, err := resolveResource(root, "/../"+filepath.Base(outside))
			convey.So(errors.Is(err, errFileNotFound), convey.ShouldBeTrue)
			convey.So(res.Status, convey.ShouldEqual, 404)
			convey.So(string(res.Body), convey.ShouldNotContainSubstring, "secret")
		})
	})

	convey.Convey("Given a document root without an error document", t, func() {
		root := writeSite(t, map[string]string{"index.html": "home"})

		convey.Convey("A missing file gets the built-in 404 body", func() {
			res, err := resolveResource(root, "/nope.html")
			convey.So(errors.Is(err, errErrorDocumentMissing), convey.ShouldBeTrue)
			convey.So(res.Status, convey.ShouldEqual, 404)
			convey.So(string(res.Body), convey.ShouldEqual, "<h1>404 Not Found</h1>\r\n")
		})
	})
}

func TestResolveResourceUnreadable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	root := writeSite(t, map[string]string{"locked.html": "x", "404.html": "missing"})
	if err := os.Chmod(filepath.Join(root, "locked.html"), 0); err != nil {
		t.Fatal(err)
	}

	_, err := resolveResource(root, "/locked.html")
	if !errors.Is(err, errFilesystem) {
		t.Errorf("got %v, want errFilesystem", err)
	}
}
