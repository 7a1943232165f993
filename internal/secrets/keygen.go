package secrets

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/ssh"
)

// DefaultKeyBits is the RSA modulus size used for new identities.
const DefaultKeyBits = 4096

// GenerateKeyPair creates a new RSA key pair. The private key is returned in
// OpenSSH format, encrypted when passphrase is non-empty, and the public key
// as an "RSA PUBLIC KEY" PEM block.
func GenerateKeyPair(bits int, passphrase []byte, comment string) (privatePEM, publicPEM []byte, err error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate RSA key pair: %w", err)
	}

	var block *pem.Block
	if len(passphrase) > 0 {
		block, err = ssh.MarshalPrivateKeyWithPassphrase(privateKey, comment, passphrase)
	} else {
		block, err = ssh.MarshalPrivateKey(privateKey, comment)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal private key: %w", err)
	}

	return pem.EncodeToMemory(block), NewIdentity(privateKey).ExportPEM(), nil
}

// WriteKeyPair generates a key pair and saves the private key at
// privatePath and the public key at privatePath + ".pub". Neither file may
// exist beforehand. On failure no file of the pair is left behind.
func WriteKeyPair(privatePath string, bits int, passphrase []byte, comment string) (publicPath string, err error) {
	privateDir := filepath.Dir(privatePath)
	if err := os.MkdirAll(privateDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create directory for private key at %s: %w", privateDir, err)
	}

	// Claim the path before the slow key generation.
	privateFile, err := createExclusive(privatePath, 0600)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.Remove(privatePath)
		}
	}()

	privPEM, pubPEM, err := GenerateKeyPair(bits, passphrase, comment)
	if err != nil {
		privateFile.Close()
		return "", err
	}
	defer memguard.WipeBytes(privPEM)

	if err := writeAndClose(privateFile, privPEM); err != nil {
		return "", fmt.Errorf("failed to write private key at %s: %w", privatePath, err)
	}

	publicPath = privatePath + ".pub"
	// #nosec G306 -- public keys are meant to be shared.
	publicFile, err := createExclusive(publicPath, 0644)
	if err != nil {
		return "", err
	}
	if err := writeAndClose(publicFile, pubPEM); err != nil {
		os.Remove(publicPath)
		return "", fmt.Errorf("failed to write public key at %s: %w", publicPath, err)
	}

	return publicPath, nil
}

func createExclusive(path string, perm os.FileMode) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("refusing to overwrite existing key at %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return file, nil
}

func writeAndClose(file *os.File, data []byte) error {
	if _, err := file.Write(data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
