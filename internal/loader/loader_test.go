package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/nesdisasm/internal/options"
	"github.com/retroenv/retrogolib/assert"
)

func TestLoad(t *testing.T) {
	t.Run("load NES ROM", func(t *testing.T) {
		tmpFile := createTempFile(t, buildMinimalNESROM(1, 0))

		cart, err := Load(options.Program{Input: tmpFile})
		assert.NoError(t, err)
		assert.NotNil(t, cart)
		assert.Equal(t, 16384, len(cart.PRG))
	})

	t.Run("reject unsupported mapper", func(t *testing.T) {
		tmpFile := createTempFile(t, buildMinimalNESROM(1, 1))

		_, err := Load(options.Program{Input: tmpFile})
		assert.ErrorContains(t, err, "unsupported mapper")
	})

	t.Run("load binary data", func(t *testing.T) {
		data := []byte{0xea, 0xea, 0xea}
		tmpFile := createTempFile(t, data)

		cart, err := Load(options.Program{Input: tmpFile, Binary: true})
		assert.NoError(t, err)
		assert.NotNil(t, cart)
		assert.True(t, len(cart.PRG) >= len(data))
		assert.Equal(t, byte(0xea), cart.PRG[0])
	})

	t.Run("error on invalid NES header", func(t *testing.T) {
		tmpFile := createTempFile(t, make([]byte, 100))

		_, err := Load(options.Program{Input: tmpFile})
		assert.Error(t, err)
	})

	t.Run("error on missing file", func(t *testing.T) {
		_, err := Load(options.Program{Input: "/nonexistent/file.nes"})
		assert.Error(t, err)
	})
}

func createTempFile(t *testing.T, data []byte) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "test.nes")
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	return tmpFile
}

// buildMinimalNESROM creates a minimal valid ROM in iNES format.
func buildMinimalNESROM(prgBanks, mapper byte) []byte {
	const nesHeaderSize = 16
	const prgBankSize = 16384

	data := make([]byte, nesHeaderSize+int(prgBanks)*prgBankSize)

	copy(data[0:4], []byte{'N', 'E', 'S', 0x1A})
	data[4] = prgBanks
	data[5] = 0
	data[6] = mapper << 4
	data[7] = mapper & 0xF0

	return data
}
