package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/parcelforge/parcel/internal/gitvc"
	"github.com/parcelforge/parcel/internal/manifest"
	"github.com/parcelforge/parcel/internal/project"
	"github.com/parcelforge/parcel/internal/registry"
)

// fakeRepo scripts one remote repository: its published tags and the
// manifest body that a checkout of each tag produces. An empty body means
// the tag ships no metadata file.
type fakeRepo struct {
	tags      []string
	manifests map[string]string
}

// fakeGit is an in-memory gitvc.Client over scripted repositories.
type fakeGit struct {
	mu         sync.Mutex
	repos      map[string]*fakeRepo // remote URL -> repo
	dirRemote  map[string]string    // working dir -> remote URL
	checkedOut map[string]string    // working dir -> tag

	clones    int
	fetches   int
	checkouts int
}

func newFakeGit() *fakeGit {
	return &fakeGit{
		repos:      make(map[string]*fakeRepo),
		dirRemote:  make(map[string]string),
		checkedOut: make(map[string]string),
	}
}

func (g *fakeGit) addRepo(url string, repo *fakeRepo) {
	g.repos[url] = repo
}

func (g *fakeGit) fail(args ...string) error {
	return &gitvc.ProcessError{Args: args, Stderr: "fatal: repository not found", Err: errors.New("exit status 128")}
}

func (g *fakeGit) Clone(ctx context.Context, url, dir string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.repos[url]; !ok {
		return g.fail("clone", url, dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	g.dirRemote[dir] = url
	g.clones++
	return nil
}

func (g *fakeGit) FetchTags(ctx context.Context, dir string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.dirRemote[dir]; !ok {
		return g.fail("fetch", "--tags", "--force")
	}
	g.fetches++
	return nil
}

func (g *fakeGit) CheckoutTag(ctx context.Context, dir, tag string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	url, ok := g.dirRemote[dir]
	if !ok {
		return g.fail("checkout", "--force", tag)
	}
	body, ok := g.repos[url].manifests[tag]
	if !ok {
		return g.fail("checkout", "--force", tag)
	}

	manifestPath := filepath.Join(dir, "package.yaml")
	if body == "" {
		_ = os.Remove(manifestPath)
	} else if err := os.WriteFile(manifestPath, []byte(body), 0644); err != nil {
		return err
	}
	g.checkedOut[dir] = tag
	g.checkouts++
	return nil
}

func (g *fakeGit) ListRemoteTags(ctx context.Context, url string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	repo, ok := g.repos[url]
	if !ok {
		return nil, g.fail("ls-remote", "--tags", url)
	}
	return append([]string(nil), repo.tags...), nil
}

func (g *fakeGit) DescribeTag(ctx context.Context, dir string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	tag, ok := g.checkedOut[dir]
	if !ok {
		return "", g.fail("describe", "--tags", "--exact-match")
	}
	return tag, nil
}

func pkgYAML(name, repoURL string, deps map[string]string) string {
	body := fmt.Sprintf("name: %s\nrepository:\n  url: %s\n", name, repoURL)
	if len(deps) > 0 {
		body += "dependencies:\n"
		for k, v := range deps {
			body += fmt.Sprintf("  %s: %q\n", k, v)
		}
	}
	return body
}

func remoteURL(canonical string) string {
	return "https://github.com/" + canonical + ".git"
}

func manifestWith(pkgs map[string]string) *project.Manifest {
	if pkgs == nil {
		pkgs = map[string]string{}
	}
	return &project.Manifest{Packages: pkgs}
}

func newTestInstaller(t *testing.T) (*Installer, *fakeGit, *project.Project) {
	t.Helper()
	proj, err := project.Init(t.TempDir())
	if err != nil {
		t.Fatalf("project.Init: %v", err)
	}

	git := newFakeGit()
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.DebugLevel)

	inst := New(proj, git, registry.New(), log)
	inst.DeleteDelay = 0
	return inst, git, proj
}

func addWidgets(git *fakeGit) {
	git.addRepo(remoteURL("acme/widgets"), &fakeRepo{
		tags: []string{"v1.0.0", "v1.2.0", "v2.0.0"},
		manifests: map[string]string{
			"v1.0.0": pkgYAML("widgets", "git@github.com:acme/widgets.git", nil),
			"v1.2.0": pkgYAML("widgets", "git@github.com:acme/widgets.git", nil),
			"v2.0.0": pkgYAML("widgets", "git@github.com:acme/widgets.git", nil),
		},
	})
}

func TestInstallResolvesBestVersion(t *testing.T) {
	inst, git, proj := newTestInstaller(t)
	addWidgets(git)

	pkg, err := inst.Install(context.Background(), "acme/widgets", "^1.0.0")
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if pkg.Name != "widgets" {
		t.Errorf("Name = %q", pkg.Name)
	}

	state, err := inst.Probe(context.Background(), "acme/widgets")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if !state.Installed() || state.Version.String() != "1.2.0" {
		t.Errorf("installed state = %+v, want 1.2.0", state)
	}

	if inst.Registry().Get("acme/widgets") == nil {
		t.Error("no registry entry after install")
	}
	if _, err := os.Stat(proj.PackageDir("acme.widgets")); err != nil {
		t.Errorf("package directory missing: %v", err)
	}
}

func TestInstallNormalizesInput(t *testing.T) {
	inst, git, _ := newTestInstaller(t)
	addWidgets(git)

	if _, err := inst.Install(context.Background(), "https://github.com/acme/widgets.git", "^1.0.0"); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if inst.Registry().Get("acme/widgets") == nil {
		t.Error("registry entry not keyed by canonical path")
	}
}

func TestInstallNoopFastPath(t *testing.T) {
	inst, git, _ := newTestInstaller(t)
	addWidgets(git)

	first, err := inst.Install(context.Background(), "acme/widgets", "^1.0.0")
	if err != nil {
		t.Fatalf("first Install: %v", err)
	}
	clones, checkouts := git.clones, git.checkouts

	second, err := inst.Install(context.Background(), "acme/widgets", "^1.0.0")
	if err != nil {
		t.Fatalf("second Install: %v", err)
	}

	if git.clones != clones || git.checkouts != checkouts {
		t.Errorf("fast path ran external work: clones %d->%d, checkouts %d->%d",
			clones, git.clones, checkouts, git.checkouts)
	}
	if first != second {
		t.Error("fast path should return the existing registry entry")
	}
}

func TestInstallUpgradeReusesClone(t *testing.T) {
	inst, git, _ := newTestInstaller(t)
	addWidgets(git)

	if _, err := inst.Install(context.Background(), "acme/widgets", "^1.0.0"); err != nil {
		t.Fatalf("Install: %v", err)
	}
	clones := git.clones

	if _, err := inst.Install(context.Background(), "acme/widgets", "^2.0.0"); err != nil {
		t.Fatalf("upgrade Install: %v", err)
	}
	if git.clones != clones {
		t.Error("upgrade should fetch and checkout in place, not re-clone")
	}

	state, err := inst.Probe(context.Background(), "acme/widgets")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if state.Version.String() != "2.0.0" {
		t.Errorf("version after upgrade = %s, want 2.0.0", state.Version)
	}
}

func TestInstallNoSatisfyingVersion(t *testing.T) {
	inst, git, proj := newTestInstaller(t)
	addWidgets(git)

	_, err := inst.Install(context.Background(), "acme/widgets", "^3.0.0")
	if !errors.Is(err, ErrNoSatisfyingVersion) {
		t.Fatalf("Install = %v, want ErrNoSatisfyingVersion", err)
	}
	if _, err := os.Stat(proj.PackageDir("acme.widgets")); !os.IsNotExist(err) {
		t.Error("no directory should exist after a failed resolve")
	}
}

func TestInstallInvalidRepositoryPath(t *testing.T) {
	inst, _, _ := newTestInstaller(t)
	if _, err := inst.Install(context.Background(), "not a repo", "^1.0.0"); err == nil {
		t.Fatal("Install should reject an unnormalizable path")
	}
}

func TestInstallRollsBackOnRepositoryMismatch(t *testing.T) {
	inst, git, proj := newTestInstaller(t)
	git.addRepo(remoteURL("acme/widgets"), &fakeRepo{
		tags: []string{"v1.0.0"},
		manifests: map[string]string{
			// The fetched tree claims to be a different package.
			"v1.0.0": pkgYAML("imposter", "evil/imposter", nil),
		},
	})

	_, err := inst.Install(context.Background(), "acme/widgets", "^1.0.0")
	if !errors.Is(err, ErrRepositoryMismatch) {
		t.Fatalf("Install = %v, want ErrRepositoryMismatch", err)
	}

	if _, err := os.Stat(proj.PackageDir("acme.widgets")); !os.IsNotExist(err) {
		t.Error("partial directory left behind after mismatch")
	}
	if inst.Registry().Get("acme/widgets") != nil {
		t.Error("registry entry left behind after mismatch")
	}
}

func TestInstallRollsBackOnMissingManifest(t *testing.T) {
	inst, git, proj := newTestInstaller(t)
	git.addRepo(remoteURL("acme/widgets"), &fakeRepo{
		tags:      []string{"v1.0.0"},
		manifests: map[string]string{"v1.0.0": ""},
	})

	_, err := inst.Install(context.Background(), "acme/widgets", "^1.0.0")
	if !errors.Is(err, manifest.ErrMissing) {
		t.Fatalf("Install = %v, want manifest.ErrMissing", err)
	}
	if _, err := os.Stat(proj.PackageDir("acme.widgets")); !os.IsNotExist(err) {
		t.Error("partial directory left behind after missing manifest")
	}
}

func TestInstallRollsBackOnSchemaInvalidManifest(t *testing.T) {
	inst, git, proj := newTestInstaller(t)
	git.addRepo(remoteURL("acme/widgets"), &fakeRepo{
		tags: []string{"v1.0.0"},
		// Decodes fine but lacks the required name field.
		manifests: map[string]string{
			"v1.0.0": "repository:\n  url: https://github.com/acme/widgets.git\n",
		},
	})

	_, err := inst.Install(context.Background(), "acme/widgets", "^1.0.0")
	if !errors.Is(err, manifest.ErrInvalid) {
		t.Fatalf("Install = %v, want manifest.ErrInvalid", err)
	}
	if _, err := os.Stat(proj.PackageDir("acme.widgets")); !os.IsNotExist(err) {
		t.Error("partial directory left behind after invalid manifest")
	}
	if inst.Registry().Get("acme/widgets") != nil {
		t.Error("registry entry left behind after invalid manifest")
	}
}

func TestUninstall(t *testing.T) {
	inst, git, proj := newTestInstaller(t)
	addWidgets(git)

	if _, err := inst.Install(context.Background(), "acme/widgets", "^1.0.0"); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if err := inst.Uninstall(context.Background(), "acme/widgets"); err != nil {
		t.Fatalf("Uninstall: %v", err)
	}

	if inst.Registry().Get("acme/widgets") != nil {
		t.Error("registry entry survived uninstall")
	}
	if _, err := os.Stat(proj.PackageDir("acme.widgets")); !os.IsNotExist(err) {
		t.Error("package directory survived uninstall")
	}

	// Uninstalling again is a no-op, not an error.
	if err := inst.Uninstall(context.Background(), "acme/widgets"); err != nil {
		t.Errorf("second Uninstall: %v", err)
	}
}

func TestConcurrentInstallsAreSerialized(t *testing.T) {
	inst, git, _ := newTestInstaller(t)
	addWidgets(git)
	git.addRepo(remoteURL("acme/gadgets"), &fakeRepo{
		tags:      []string{"v1.0.0"},
		manifests: map[string]string{"v1.0.0": pkgYAML("gadgets", "acme/gadgets", nil)},
	})

	var wg sync.WaitGroup
	errc := make(chan error, 2)
	for _, repo := range []string{"acme/widgets", "acme/gadgets"} {
		wg.Add(1)
		go func(repo string) {
			defer wg.Done()
			_, err := inst.Install(context.Background(), repo, "^1.0.0")
			errc <- err
		}(repo)
	}
	wg.Wait()
	close(errc)

	for err := range errc {
		if err != nil {
			t.Errorf("Install: %v", err)
		}
	}
	if inst.Registry().Len() != 2 {
		t.Errorf("Len = %d, want 2", inst.Registry().Len())
	}
}

func TestProbeStates(t *testing.T) {
	inst, git, proj := newTestInstaller(t)
	addWidgets(git)

	state, err := inst.Probe(context.Background(), "acme/widgets")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if state.Kind != StateNotInstalled {
		t.Errorf("Kind = %v, want StateNotInstalled", state.Kind)
	}

	// A directory the collaborator cannot describe is corrupt.
	if err := os.MkdirAll(proj.PackageDir("acme.widgets"), 0755); err != nil {
		t.Fatal(err)
	}
	state, err = inst.Probe(context.Background(), "acme/widgets")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if state.Kind != StateCorrupt {
		t.Errorf("Kind = %v, want StateCorrupt", state.Kind)
	}
}
