package slidecrawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeOCR(t *testing.T) {
	assert.Equal(t, "AB", normalizeOCR("AB\n\f"))
	assert.Equal(t, "fi", normalizeOCR("ﬁ\n"))
	assert.Equal(t, "CD", normalizeOCR("  ＣＤ \n"))
	assert.Equal(t, "", normalizeOCR("\n\f"))
}

func TestExportFailed(t *testing.T) {
	assert.True(t, exportFailed("Export failed: cannot load /tmp/b.jpg", "failed"))
	assert.True(t, exportFailed("EXPORT FAILED", "failed"))
	assert.False(t, exportFailed("Slideshow exported successfully", "failed"))
	assert.True(t, exportFailed("Échec de l'exportation", "échec"))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "fresh_start", sanitizeName("fresh start"))
	assert.Equal(t, "a_b.txt", sanitizeName("/a//b.txt "))
	assert.Equal(t, "after-export", sanitizeName("after-export"))
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "  a\n  b", indent("a\nb\n", "  "))
}
