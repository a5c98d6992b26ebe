// Command bmtree is a thin CLI over the bmtree package: create a tree,
// sign and wipe identifiers against it, verify a signature chain offline,
// and inspect a tree file's header fields plus a content fingerprint.
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash"
	"github.com/urfave/cli"

	"github.com/tqm-dev/bmtree"
	"github.com/tqm-dev/bmtree/storage"
)

func decodeHexKey32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func decodeHexSig64(s string) ([64]byte, error) {
	var out [64]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(b) != 64 {
		return out, fmt.Errorf("expected 64 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func cmdCreate(c *cli.Context) error {
	path := c.String("file")
	dilution := c.Uint64("dilution")
	startBatch := c.Uint64("start-batch")
	endBatch := c.Uint64("end-batch")

	rootKeyPair, err := bmtree.GenerateRandomKeyPair()
	if err != nil {
		return err
	}

	s, err := storage.OpenFile(path)
	if err != nil {
		return err
	}
	defer s.Close()

	options := bmtree.Options{
		Dilution:           dilution,
		StartKeyIdentifier: bmtree.KeyIdentifier{BatchId: startBatch, KeyId: 0},
		EndKeyIdentifier:   bmtree.KeyIdentifier{BatchId: endBatch, KeyId: 0},
	}
	if _, err := bmtree.Create(rootKeyPair, s, options); err != nil {
		return err
	}
	if err := s.Sync(); err != nil {
		return err
	}

	private := rootKeyPair.PrivateKey()
	public := rootKeyPair.PublicKey()
	fmt.Printf("root private key (keep secret, not stored on disk): %s\n", hex.EncodeToString(private[:]))
	fmt.Printf("root public key: %s\n", hex.EncodeToString(public[:]))
	rootKeyPair.Wipe()
	return nil
}

func cmdSign(c *cli.Context) error {
	path := c.String("file")
	s, err := storage.OpenFile(path)
	if err != nil {
		return err
	}
	defer s.Close()

	tree, err := bmtree.FromStream(s)
	if err != nil {
		return err
	}

	id := bmtree.KeyIdentifier{BatchId: c.Uint64("batch"), KeyId: c.Uint64("key")}
	sig, err := tree.Sign(id, []byte(c.String("data")))
	if err != nil {
		return err
	}
	if err := s.Sync(); err != nil {
		return err
	}

	fmt.Printf("root.parentPublicKey=%s root.signature=%s\n",
		hex.EncodeToString(sig.Root.ParentPublicKey[:]), hex.EncodeToString(sig.Root.Signature[:]))
	fmt.Printf("top.parentPublicKey=%s top.signature=%s\n",
		hex.EncodeToString(sig.Top.ParentPublicKey[:]), hex.EncodeToString(sig.Top.Signature[:]))
	fmt.Printf("bottom.parentPublicKey=%s bottom.signature=%s\n",
		hex.EncodeToString(sig.Bottom.ParentPublicKey[:]), hex.EncodeToString(sig.Bottom.Signature[:]))
	return nil
}

func cmdWipe(c *cli.Context) error {
	path := c.String("file")
	s, err := storage.OpenFile(path)
	if err != nil {
		return err
	}
	defer s.Close()

	tree, err := bmtree.FromStream(s)
	if err != nil {
		return err
	}

	keyId := c.Uint64("key")
	if c.Bool("key-invalid") {
		keyId = bmtree.InvalidId
	}
	id := bmtree.KeyIdentifier{BatchId: c.Uint64("batch"), KeyId: keyId}
	if err := tree.Wipe(id); err != nil {
		return err
	}
	return s.Sync()
}

func cmdVerify(c *cli.Context) error {
	rootPublicKey, err := decodeHexKey32(c.String("root-public-key"))
	if err != nil {
		return err
	}
	topPublicKey, err := decodeHexKey32(c.String("top-public-key"))
	if err != nil {
		return err
	}
	bottomPublicKey, err := decodeHexKey32(c.String("bottom-public-key"))
	if err != nil {
		return err
	}
	rootSig, err := decodeHexSig64(c.String("root-signature"))
	if err != nil {
		return err
	}
	topSig, err := decodeHexSig64(c.String("top-signature"))
	if err != nil {
		return err
	}
	bottomSig, err := decodeHexSig64(c.String("bottom-signature"))
	if err != nil {
		return err
	}

	sig := bmtree.TreeSignature{
		Root:   bmtree.ParentPublicKeySignaturePair{ParentPublicKey: rootPublicKey, Signature: rootSig},
		Top:    bmtree.ParentPublicKeySignaturePair{ParentPublicKey: topPublicKey, Signature: topSig},
		Bottom: bmtree.ParentPublicKeySignaturePair{ParentPublicKey: bottomPublicKey, Signature: bottomSig},
	}
	id := bmtree.KeyIdentifier{BatchId: c.Uint64("batch"), KeyId: c.Uint64("key")}

	ok := bmtree.Verify(rootPublicKey, id, []byte(c.String("data")), sig)
	if !ok {
		return cli.NewExitError("signature does not verify", 1)
	}
	fmt.Println("ok")
	return nil
}

func cmdInspect(c *cli.Context) error {
	path := c.String("file")
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}
	fmt.Printf("xxhash64=%016x\n", h.Sum64())

	s, err := storage.OpenFile(path)
	if err != nil {
		return err
	}
	defer s.Close()
	tree, err := bmtree.FromStream(s)
	if err != nil {
		return err
	}
	options := tree.Options()
	fmt.Printf("dilution=%d start=%v end=%v\n", options.Dilution, options.StartKeyIdentifier, options.EndKeyIdentifier)
	rootPublicKey := tree.RootPublicKey()
	fmt.Printf("rootPublicKey=%s\n", hex.EncodeToString(rootPublicKey[:]))
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "bmtree"
	app.Usage = "forward-secure hierarchical signing key tree"

	fileFlag := cli.StringFlag{Name: "file", Usage: "path to the tree's backing file"}
	batchFlag := cli.Uint64Flag{Name: "batch", Usage: "BatchId"}
	keyFlag := cli.Uint64Flag{Name: "key", Usage: "KeyId"}

	app.Commands = []cli.Command{
		{
			Name:  "create",
			Usage: "create a new tree with a fresh random root key pair",
			Flags: []cli.Flag{
				fileFlag,
				cli.Uint64Flag{Name: "dilution"},
				cli.Uint64Flag{Name: "start-batch"},
				cli.Uint64Flag{Name: "end-batch"},
			},
			Action: cmdCreate,
		},
		{
			Name:  "sign",
			Usage: "sign data at an identifier",
			Flags: []cli.Flag{
				fileFlag, batchFlag, keyFlag,
				cli.StringFlag{Name: "data"},
			},
			Action: cmdSign,
		},
		{
			Name:  "wipe",
			Usage: "wipe an identifier's private material",
			Flags: []cli.Flag{
				fileFlag, batchFlag, keyFlag,
				cli.BoolFlag{Name: "key-invalid", Usage: "wipe the whole batch without advancing into it"},
			},
			Action: cmdWipe,
		},
		{
			Name:  "verify",
			Usage: "verify a signature chain offline",
			Flags: []cli.Flag{
				batchFlag, keyFlag,
				cli.StringFlag{Name: "data"},
				cli.StringFlag{Name: "root-public-key"},
				cli.StringFlag{Name: "root-signature"},
				cli.StringFlag{Name: "top-public-key"},
				cli.StringFlag{Name: "top-signature"},
				cli.StringFlag{Name: "bottom-public-key"},
				cli.StringFlag{Name: "bottom-signature"},
			},
			Action: cmdVerify,
		},
		{
			Name:  "inspect",
			Usage: "print a tree file's header fields and content fingerprint",
			Flags: []cli.Flag{fileFlag},
			Action: cmdInspect,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
