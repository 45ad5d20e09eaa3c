package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/delimit/internal/session"
	"codeberg.org/snonux/delimit/internal/testutil"
)

func TestCreateRootCommand(t *testing.T) {
	viper.Reset()
	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	// Test basic command properties
	if cmd.Use != "delimit" {
		t.Errorf("Expected Use to be 'delimit', got %s", cmd.Use)
	}

	// Test that persistent flags are set up
	for _, name := range []string{"config", "collection", "state", "language", "log-level", "log-file"} {
		t.Run("flag_"+name, func(t *testing.T) {
			var flag *pflag.Flag = cmd.PersistentFlags().Lookup(name)
			if flag == nil {
				t.Errorf("Expected flag %s to exist", name)
			}
		})
	}

	// Test that every subcommand is registered
	subcommands := []string{
		"load", "add", "preview", "view", "export", "show", "restore",
		"decks", "deck", "notetypes", "map", "delimiters", "tags", "media",
		"grid", "clean", "watch", "apkg", "archive",
	}
	for _, name := range subcommands {
		t.Run("cmd_"+name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			if err != nil || sub == cmd {
				t.Errorf("Expected subcommand %s to exist", name)
			}
		})
	}
}

func TestSetupFlags(t *testing.T) {
	viper.Reset()
	cmd := &cobra.Command{}
	flags := NewFlags()

	setupFlags(cmd, flags)

	stateFlag := cmd.PersistentFlags().Lookup("state")
	if stateFlag == nil {
		t.Fatal("state flag not found")
	}
	if stateFlag.DefValue != DefaultStatePath() {
		t.Errorf("Expected default state path to be %s, got %s", DefaultStatePath(), stateFlag.DefValue)
	}

	levelFlag := cmd.PersistentFlags().Lookup("log-level")
	if levelFlag == nil {
		t.Fatal("log-level flag not found")
	}
	if levelFlag.DefValue != "normal" {
		t.Errorf("Expected default log level to be normal, got %s", levelFlag.DefValue)
	}
}

func TestBindFlagsToViper(t *testing.T) {
	viper.Reset()

	cmd := &cobra.Command{}
	flags := NewFlags()
	setupFlags(cmd, flags)

	cmd.PersistentFlags().Set("collection", "/test/collection.anki2")
	cmd.PersistentFlags().Set("log-level", "debug")

	if viper.GetString("collection.path") != "/test/collection.anki2" {
		t.Errorf("Expected collection.path to be /test/collection.anki2, got %s", viper.GetString("collection.path"))
	}
	if viper.GetString("log.level") != "debug" {
		t.Errorf("Expected log.level to be debug, got %s", viper.GetString("log.level"))
	}
}

func TestInitConfig(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		want      int
	}{
		{
			name: "with config file",
			setupFunc: func(t *testing.T) string {
				cfgPath := filepath.Join(t.TempDir(), "test-config.yaml")
				content := `export:
  cards_per_row: 4
render:
  back_landmarks:
    - TRANSLATION`
				if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
					t.Fatalf("Failed to create test config: %v", err)
				}
				return cfgPath
			},
			want: 4,
		},
		{
			name:      "without config file",
			setupFunc: func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.yaml") },
			want:      3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper for each test
			viper.Reset()

			InitConfig(tt.setupFunc(t))

			if got := viper.GetInt("export.cards_per_row"); got != tt.want {
				t.Errorf("export.cards_per_row = %d, want %d", got, tt.want)
			}

			// Test environment variable prefix and nested keys
			t.Setenv("DELIMIT_LOG_LEVEL", "debug")
			if viper.GetString("log.level") != "debug" {
				t.Error("Environment variable not properly loaded")
			}
		})
	}
}

type testEnv struct {
	dir        string
	collection string
	state      string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := testutil.CreateTestDirectory(t)
	return testEnv{
		dir:        dir,
		collection: filepath.Join(dir, "collection.anki2"),
		state:      filepath.Join(dir, "state", "state.json"),
	}
}

// run executes one delimit command line against the test environment and
// returns its output
func (e testEnv) run(t *testing.T, args ...string) string {
	t.Helper()

	viper.Reset()
	root := CreateRootCommand(NewFlags())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args,
		"--collection", e.collection,
		"--state", e.state,
		"--log-level", "none",
		"--language", "en"))

	require.NoError(t, root.Execute(), out.String())
	return out.String()
}

func (e testEnv) session(t *testing.T) *session.State {
	t.Helper()
	st, err := session.NewStore(e.state, nil).Load()
	require.NoError(t, err)
	return st
}

func (e testEnv) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	testutil.CreateTestFile(t, path, []byte(content))
	return path
}

func TestCardWorkflow(t *testing.T) {
	env := newTestEnv(t)
	cards := env.writeFile(t, "cards.txt", "Paris;France\nBerlin;Germany\n")
	tags := env.writeFile(t, "tags.txt", "geo\ngeo, capital\n")

	assert.Contains(t, env.run(t, "load", cards, "--tags", tags), "Cards: 2")
	assert.Equal(t, "geo\ngeo, capital", env.session(t).Tags)

	env.run(t, "deck", "use", "Default")
	out := env.run(t, "notetypes", "--use", "Basic")
	assert.Contains(t, out, "0: Front")
	assert.Contains(t, out, "1: Back")

	preview := filepath.Join(env.dir, "preview.html")
	env.run(t, "preview", "--line", "2", "-o", preview)
	testutil.AssertFileContains(t, preview, "Berlin")
	st := env.session(t)
	assert.Equal(t, 1, st.PreviewLine)
	assert.Contains(t, st.LastPreviewHTML, "Germany")

	assert.Contains(t, env.run(t, "add"), "2 cards added successfully!")

	assert.Contains(t, env.run(t, "show", "Default"), "Cards: 2")
	st = env.session(t)
	assert.Equal(t, "Paris ; France\nBerlin ; Germany", st.Content)
	assert.Equal(t, "Default", st.Deck)

	assert.Contains(t, env.run(t, "restore"), "State restored.")
	assert.Equal(t, "Paris;France\nBerlin;Germany", env.session(t).Content)

	export := filepath.Join(env.dir, "export", "cards.html")
	assert.Contains(t, env.run(t, "export", "-o", export), "File exported to")
	testutil.AssertFileContains(t, export, "Paris")
	testutil.AssertFileContains(t, export, "Exported Cards")

	pkg := filepath.Join(env.dir, "export", "default.apkg")
	env.run(t, "apkg", "-o", pkg)
	testutil.AssertFileExists(t, pkg)
}

func TestMapCommand(t *testing.T) {
	env := newTestEnv(t)

	assert.Contains(t, env.run(t, "map", "1=Front", "0=Back"), "Field mapping: 0=Back, 1=Front")
	assert.Contains(t, env.run(t, "map", "--clear", "0"), "Field mapping: 1=Front")
	assert.Contains(t, env.run(t, "map", "--reset"), "No mapping (positional).")
	assert.Empty(t, env.session(t).FieldMappings)
}

func TestDelimitersCommand(t *testing.T) {
	env := newTestEnv(t)

	assert.Contains(t, env.run(t, "delimiters", "pipe"), "Active delimiters: Ponto e Vírgula, Pipe")
	assert.Contains(t, env.run(t, "delimiters", "--only", "tab"), "Active delimiters: Tab")

	states := env.session(t).Delimiters
	assert.True(t, states["Tab"])
	assert.False(t, states["Ponto e Vírgula"])
}

func TestCleanCommand(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "load", env.writeFile(t, "cards.txt", "Hello;World\nFoo;Bar"))

	env.run(t, "clean", "--find", "hello", "--replace", "Hi")
	assert.Equal(t, "Hi;World\nFoo;Bar", env.session(t).Content)

	env.run(t, "clean", "--join")
	st := env.session(t)
	assert.Equal(t, "Hi;World Foo;Bar", st.Content)
	assert.Equal(t, "Hi;World\nFoo;Bar", st.JoinedOriginal)

	env.run(t, "clean", "--join")
	assert.Equal(t, "Hi;World\nFoo;Bar", env.session(t).Content)
}

func TestGridCommand(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "load", env.writeFile(t, "cards.txt", "Paris ; France\nBerlin;Germany"))

	assert.Equal(t, "Paris,France\nBerlin,Germany\n", env.run(t, "grid"))

	csvFile := env.writeFile(t, "cards.csv", "Campo 1,Campo 2\nRoma,Italia\n")
	env.run(t, "grid", "--import", csvFile, "--header")
	assert.Equal(t, "Roma;Italia", env.session(t).Content)
}

func TestTagsCommand(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "load", env.writeFile(t, "cards.txt", "a;b\nc;d"))

	out := env.run(t, "tags", "--numbered")
	assert.Contains(t, out, "1: 1")
	assert.Contains(t, out, "2: 2")
	assert.True(t, env.session(t).NumberedTags)
}

func TestArchiveCommand(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "load", env.writeFile(t, "cards.txt", "a;b"))

	out := env.run(t, "archive")
	assert.True(t, strings.Contains(out, "State archived to"), out)
	testutil.AssertFileNotExists(t, filepath.Dir(env.state))
	testutil.AssertFileExists(t, filepath.Join(env.dir, "archive"))
}
