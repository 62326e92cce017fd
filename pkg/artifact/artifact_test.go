package artifact

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/red-crowdfund/pkg/chain"
)

const testABI = `[{"type":"function","name":"symbol","inputs":[],"outputs":[{"name":"","type":"string"}],"stateMutability":"view"}]`

func testDescriptor(t *testing.T) *Descriptor {
	t.Helper()
	art, err := chain.NewArtifact("Sample", testABI, nil, nil)
	require.NoError(t, err)
	return New(art, common.HexToAddress("0x345ca3e014aaf5dca488057592ee47305d9b3e10"),
		common.HexToAddress("0x627306090abaB3A6e1400e9345bC60c78a8BEf57"), 1_653_000)
}

func TestFileStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "out"))
	d := testDescriptor(t)

	require.NoError(t, store.Save(ctx, d))

	raw, err := os.ReadFile(store.Path("Sample"))
	require.NoError(t, err)
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{"name", "address", "jsonInterface", "from", "gas"} {
		assert.Contains(t, fields, key)
	}

	loaded, err := store.Load(ctx, "Sample")
	require.NoError(t, err)
	assert.Equal(t, d.Address, loaded.Address)
	assert.Equal(t, d.From, loaded.From)
	assert.Equal(t, d.Gas, loaded.Gas)

	parsed, err := loaded.ABI()
	require.NoError(t, err)
	assert.Contains(t, parsed.Methods, "symbol")

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sample"}, names)
}

func TestFileStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())

	_, err := store.Load(ctx, "Missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Load(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidName)

	d := testDescriptor(t)
	d.Address = common.Address{}
	assert.Error(t, store.Save(ctx, d))

	names, err := NewFileStore(filepath.Join(t.TempDir(), "none")).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestHTTPReader_ThroughHandler(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(t.TempDir())
	require.NoError(t, store.Save(ctx, testDescriptor(t)))

	mux := http.NewServeMux()
	mux.Handle("/artifacts/", NewHandler(store, zap.NewNop()))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	reader, err := NewReader(srv.URL + "/artifacts/")
	require.NoError(t, err)
	d, err := reader.Load(ctx, "Sample")
	require.NoError(t, err)
	assert.Equal(t, "Sample", d.Name)

	_, err = reader.Load(ctx, "Missing")
	assert.ErrorIs(t, err, ErrNotFound)

	resp, err := http.Get(srv.URL + "/artifacts/")
	require.NoError(t, err)
	defer resp.Body.Close()
	var names []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&names))
	assert.Equal(t, []string{"Sample"}, names)

	post, err := http.Post(srv.URL+"/artifacts/Sample.json", "application/json", nil)
	require.NoError(t, err)
	post.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, post.StatusCode)
}

func TestNewReader(t *testing.T) {
	r, err := NewReader("./out")
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, r)

	r, err = NewReader("https://example.com/artifacts")
	require.NoError(t, err)
	assert.IsType(t, &HTTPReader{}, r)

	_, err = NewHTTPReader("ftp://example.com", nil)
	assert.Error(t, err)
}
