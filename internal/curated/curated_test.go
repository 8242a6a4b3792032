package curated

import (
	"os"
	"path/filepath"
	"testing"

	"appforge/internal/common"
	"appforge/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	l := Default()
	assert.Equal(t, 24, l.Len())

	featured := l.Configs(3, true)
	require.Len(t, featured, 3)
	assert.Equal(t, "microsoft/vscode", featured[0].Repo)
	assert.Equal(t, "obsidianmd/obsidian-releases", featured[1].Repo)
	assert.Equal(t, "videolan/vlc", featured[2].Repo)

	for _, e := range l.Configs(0, false) {
		assert.True(t, domain.Category(e.Category).Valid(), "%s 的分类 %q 不合法", e.Repo, e.Category)
	}
}

func TestList_Configs(t *testing.T) {
	l := Default()

	assert.Len(t, l.Configs(5, false), 5)
	assert.Len(t, l.Configs(0, false), 24)
	assert.Len(t, l.Configs(100, false), 24)
	assert.Len(t, l.Configs(0, true), 3)

	repos := l.Repos(2, false)
	assert.Equal(t, []string{"microsoft/vscode", "obsidianmd/obsidian-releases"}, repos)

	var nilList *List
	assert.Empty(t, nilList.Configs(10, false))
	assert.Zero(t, nilList.Len())
}

func TestEntry_OwnerName(t *testing.T) {
	e := Entry{Repo: "signalapp/Signal-Desktop"}
	assert.Equal(t, "signalapp", e.Owner())
	assert.Equal(t, "Signal-Desktop", e.Name())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
		wantLen int
	}{
		{"合法列表", "apps:\n  - repo: a/b\n  - repo: ' c/d '\n    category: games\n", false, 2},
		{"空列表", "apps: []\n", false, 0},
		{"缺少斜杠", "apps:\n  - repo: nope\n", true, 0},
		{"多级路径", "apps:\n  - repo: a/b/c\n", true, 0},
		{"空 owner", "apps:\n  - repo: /b\n", true, 0},
		{"重复仓库", "apps:\n  - repo: a/b\n  - repo: A/B\n", true, 0},
		{"YAML 语法错误", "apps: [", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Parse([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, common.HasCode(err, common.ErrCodeConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, l.Len())
		})
	}
}

func TestLoad(t *testing.T) {
	l, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 24, l.Len())

	path := filepath.Join(t.TempDir(), "apps.yaml")
	require.NoError(t, os.WriteFile(path, []byte("apps:\n  - repo: a/b\n    featured: true\n"), 0o600))

	l, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b"}, l.Repos(0, true))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, common.HasCode(err, common.ErrCodeConfig))
}

func TestList_CountByCategory(t *testing.T) {
	counts := Default().CountByCategory()
	assert.Equal(t, 3, counts[domain.CategoryFinance])
	assert.Equal(t, 4, counts[domain.CategoryMedia])
	assert.Equal(t, 2, counts[domain.CategoryDeveloperTools])
	assert.Zero(t, counts[domain.CategoryGames])
}
