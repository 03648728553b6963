package repo

import (
	"testing"

	"github.com/multiformats/go-multiaddr"
	"github.com/stretchr/testify/assert"
	"golang.org/x/xerrors"

	"github.com/govexec/govexec/node/config"
)

func basicTest(t *testing.T, repo Repo) {
	apima, err := repo.APIEndpoint()
	if assert.Error(t, err) {
		assert.Nil(t, apima)
	}
	assert.Equal(t, ErrNoAPIEndpoint, err, "expect ErrNoAPIEndpoint")

	lrepo, err := repo.Lock()
	assert.NoError(t, err, "should be able to lock once")
	assert.NotNil(t, lrepo, "locked repo shouldn't be nil")

	{
		lrepo2, err := repo.Lock()
		if assert.Error(t, err) {
			assert.Nil(t, lrepo2)
		}
		assert.Equal(t, ErrRepoAlreadyLocked, err)
	}

	err = lrepo.Close()
	assert.NoError(t, err, "should be able to unlock")

	lrepo, err = repo.Lock()
	assert.NoError(t, err, "should be able to relock")
	assert.NotNil(t, lrepo, "locked repo shouldn't be nil")

	ma, err := multiaddr.NewMultiaddr("/ip4/127.0.0.1/tcp/43244")
	assert.NoError(t, err, "creating multiaddr shouldn't error")

	err = lrepo.SetAPIEndpoint(ma)
	assert.NoError(t, err, "setting multiaddr shouldn't error")

	apima, err = repo.APIEndpoint()
	assert.NoError(t, err, "getting multiaddr shouldn't error")
	assert.Equal(t, ma, apima, "returned API multiaddr should be the same")

	c1, err := lrepo.Config()
	assert.NoError(t, err, "config should not error")
	assert.Equal(t, config.DefaultGovNode(), c1, "there should be a default config")

	err = lrepo.SetConfig(func(c interface{}) {
		cfg := c.(*config.GovNode)
		cfg.Governor.Self = "t0900"
	})
	assert.NoError(t, err, "setting config should not error")

	c2, err := lrepo.Config()
	assert.NoError(t, err, "getting config should not error")
	cfg2 := c2.(*config.GovNode)
	assert.Equal(t, "t0900", cfg2.Governor.Self, "config should be set")

	k1 := KeyInfo{Type: KTJwtHmacSecret, PrivateKey: []byte{0x01}}
	k2 := KeyInfo{Type: KTJwtHmacSecret, PrivateKey: []byte{0x02}}

	kstr, err := lrepo.KeyStore()
	assert.NoError(t, err, "should be able to get keystore")
	assert.NotNil(t, kstr, "keystore shouldn't be nil")

	list, err := kstr.List()
	assert.NoError(t, err, "should be able to list keys")
	assert.Empty(t, list, "there should be no keys")

	err = kstr.Put("k1", k1)
	assert.NoError(t, err, "should be able to put k1")

	err = kstr.Put("k1", k1)
	if assert.Error(t, err, "putting key under the same name should error") {
		assert.True(t, xerrors.Is(err, ErrKeyExists), "returned error is ErrKeyExists")
	}

	k1prim, err := kstr.Get("k1")
	assert.NoError(t, err, "should be able to get k1")
	assert.Equal(t, k1, k1prim, "returned key should be the same")

	k2prim, err := kstr.Get("k2")
	if assert.Error(t, err, "should not be able to get k2") {
		assert.True(t, xerrors.Is(err, ErrKeyInfoNotFound), "returned error is ErrKeyInfoNotFound")
	}
	assert.Empty(t, k2prim, "there should be no output for k2")

	err = kstr.Put("k2", k2)
	assert.NoError(t, err, "should be able to put k2")

	list, err = kstr.List()
	assert.NoError(t, err, "should be able to list keys")
	assert.ElementsMatch(t, []string{"k1", "k2"}, list, "returned elements match")

	err = kstr.Delete("k2")
	assert.NoError(t, err, "should be able to delete k2")

	list, err = kstr.List()
	assert.NoError(t, err, "should be able to list keys")
	assert.ElementsMatch(t, []string{"k1"}, list, "returned elements match")

	err = lrepo.Close()
	assert.NoError(t, err, "should be able to close")

	apima, err = repo.APIEndpoint()
	if assert.Error(t, err) {
		assert.Nil(t, apima, "after closing repo, api multiaddr should be empty")
	}
	assert.Equal(t, ErrNoAPIEndpoint, err, "expect ErrNoAPIEndpoint")

	_, err = kstr.List()
	assert.Equal(t, ErrClosedRepo, err, "keystore should be closed with the repo")
}

func TestFsBasic(t *testing.T) {
	repo, err := NewFS(t.TempDir())
	assert.NoError(t, err, "should be able to create repo")

	err = repo.Init()
	assert.NoError(t, err, "should be able to init repo")

	basicTest(t, repo)
}

func TestMemBasic(t *testing.T) {
	repo := NewMemory(nil)
	basicTest(t, repo)
}
