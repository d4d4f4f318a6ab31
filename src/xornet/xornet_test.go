package xornet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xornet-io/xornet/src/config"
	"github.com/xornet-io/xornet/src/crypto/keys"
	"github.com/xornet-io/xornet/src/members"
)

func TestInitFoundsNetwork(t *testing.T) {
	dir := filepath.Join("test_data", "founder")
	os.RemoveAll(dir)
	os.MkdirAll(dir, 0700)
	defer os.RemoveAll("test_data")

	conf := config.NewTestConfig(t)
	conf.SetDataDir(dir)
	conf.BindAddr = "127.0.0.1:0"
	conf.Moniker = "founder"

	key, err := Keygen(conf.Keyfile())
	if err != nil {
		t.Fatal(err)
	}

	self := members.NewMember(keys.PublicKeyHex(&key.PublicKey), conf.BindAddr, conf.Moniker)
	if err := members.NewJSONMemberSet(dir).Write([]*members.Member{self}); err != nil {
		t.Fatal(err)
	}

	engine := NewXornet(conf)
	if err := engine.Init(); err != nil {
		t.Fatal(err)
	}
	defer engine.Node.Shutdown()

	if engine.Node == nil {
		t.Fatal("engine should build a node")
	}
	if engine.Members.Len() != 1 {
		t.Fatal("bootstrap members should be loaded")
	}

	if _, err := os.Stat(filepath.Join(dir, GenesisFile)); err != nil {
		t.Fatal("founding a network should persist the genesis key")
	}
}

func TestKeygenRefusesOverwrite(t *testing.T) {
	dir := filepath.Join("test_data", "keys")
	os.RemoveAll(dir)
	os.MkdirAll(dir, 0700)
	defer os.RemoveAll("test_data")

	keyfile := filepath.Join(dir, "priv_key")

	if _, err := Keygen(keyfile); err != nil {
		t.Fatal(err)
	}
	if _, err := Keygen(keyfile); err == nil {
		t.Fatal("keygen should refuse to overwrite an existing key")
	}
}
