package xornet

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/xornet-io/xornet/src/chain"
	"github.com/xornet-io/xornet/src/config"
	"github.com/xornet-io/xornet/src/crypto/keys"
	"github.com/xornet-io/xornet/src/members"
	"github.com/xornet-io/xornet/src/net"
	"github.com/xornet-io/xornet/src/node"
	"github.com/xornet-io/xornet/src/section"
	"github.com/xornet-io/xornet/src/store"
	"github.com/xornet-io/xornet/src/threshold"
	"github.com/xornet-io/xornet/src/xorname"
)

// GenesisFile is the name of the file, in the data directory, holding the
// network's genesis authority public key in hex. Every node of one network
// shares the same genesis key; a node that starts without one founds a new
// network.
const GenesisFile = "genesis.pub"

// Xornet is the top-level object wiring a node and its collaborators.
type Xornet struct {
	Config    *config.Config
	Node      *node.Node
	Transport net.Transport
	Store     store.Store
	Members   *members.MemberSet

	authority threshold.Signer
	genesis   []byte
}

// NewXornet is a factory method for the engine. Call Init before Run.
func NewXornet(conf *config.Config) *Xornet {
	return &Xornet{
		Config: conf,
	}
}

func (x *Xornet) initKey() error {
	if x.Config.Key == nil {
		simpleKeyfile := keys.NewSimpleKeyfile(x.Config.Keyfile())

		privKey, err := simpleKeyfile.ReadKey()
		if err != nil {
			x.Config.Logger().Warn("Cannot read private key from file", err)

			privKey, err = Keygen(x.Config.Keyfile())
			if err != nil {
				x.Config.Logger().Error("Cannot generate a new private key", err)
				return err
			}

			x.Config.Logger().Info("Created a new key: ", keys.PublicKeyHex(&privKey.PublicKey))
		}

		x.Config.Key = privKey
	}
	return nil
}

func (x *Xornet) initMembers() error {
	memberStore := members.NewJSONMemberSet(x.Config.DataDir)

	bootstrap, err := memberStore.MemberSet()
	if err != nil {
		return err
	}

	if bootstrap.Len() < 1 {
		return fmt.Errorf("members.json should define at least one member")
	}

	x.Members = bootstrap

	return nil
}

func (x *Xornet) initStore() error {
	if !x.Config.Store {
		x.Store = store.NewInmemStore()

		x.Config.Logger().Debug("created new in-mem store")
	} else {
		var err error

		x.Config.Logger().WithField("path", x.Config.DatabaseDir).Debug("Attempting to load or create database")

		x.Store, err = store.NewBadgerStore(x.Config.DatabaseDir)
		if err != nil {
			return err
		}
	}

	return nil
}

func (x *Xornet) initTransport() error {
	transport, err := net.NewTCPTransport(
		x.Config.BindAddr,
		x.Config.AdvertiseAddr,
		x.Config.JoinTimeout,
		x.Config.Logger(),
	)
	if err != nil {
		return err
	}

	x.Transport = transport

	return nil
}

// initGenesis loads the network's genesis authority key, or founds a new
// network by generating one. The founder holds the authority key for the
// first epoch; a joiner holds none until it participates in a rotation.
func (x *Xornet) initGenesis() error {
	genesisFile := filepath.Join(x.Config.DataDir, GenesisFile)

	raw, err := ioutil.ReadFile(genesisFile)
	if err == nil {
		pub, err := hex.DecodeString(strings.TrimSpace(string(raw)))
		if err != nil {
			return fmt.Errorf("bad genesis key in %s: %v", genesisFile, err)
		}
		x.genesis = pub
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}

	x.Config.Logger().Info("No genesis key found; founding a new network")

	authority, err := threshold.NewQuorumSigner()
	if err != nil {
		return err
	}

	pub := authority.PublicKeyBytes()
	encoded := hex.EncodeToString(pub) + "\n"
	if err := ioutil.WriteFile(genesisFile, []byte(encoded), 0644); err != nil {
		return err
	}

	x.authority = authority
	x.genesis = pub

	return nil
}

func (x *Xornet) initNode() error {
	key := x.Config.Key

	identity := node.NewIdentity(key, x.Config.Moniker)

	nodePub := keys.PublicKeyHex(&key.PublicKey)
	if _, ok := x.Members.ByPubKey[nodePub]; !ok {
		return fmt.Errorf("cannot find self pubkey in members.json")
	}

	prefix, _ := xorname.ParsePrefix("")
	local := section.New(prefix, x.Members, chain.NewProofChain(x.genesis))

	x.Node = node.NewNode(
		x.Config,
		identity,
		local,
		x.authority,
		x.Store,
		x.Transport,
	)

	if err := x.Node.Init(); err != nil {
		return fmt.Errorf("failed to initialize node: %s", err)
	}

	return nil
}

// Init initialises the engine's collaborators in dependency order.
func (x *Xornet) Init() error {
	if err := x.initKey(); err != nil {
		return err
	}

	if err := x.initMembers(); err != nil {
		return err
	}

	if err := x.initStore(); err != nil {
		return err
	}

	if err := x.initTransport(); err != nil {
		return err
	}

	if err := x.initGenesis(); err != nil {
		return err
	}

	if err := x.initNode(); err != nil {
		return err
	}

	return nil
}

// Run invokes the node's main loop.
func (x *Xornet) Run() {
	x.Node.Run()
}

// Keygen generates a new key pair and persists it to keyfile.
func Keygen(keyfile string) (*ecdsa.PrivateKey, error) {
	simpleKeyfile := keys.NewSimpleKeyfile(keyfile)

	if _, err := simpleKeyfile.ReadKey(); err == nil {
		return nil, fmt.Errorf("another key already lives under %s", keyfile)
	}

	privKey, err := keys.GenerateECDSAKey()
	if err != nil {
		return nil, err
	}

	if err := simpleKeyfile.WriteKey(privKey); err != nil {
		return nil, err
	}

	return privKey, nil
}
