// Package keyring implements the KeyMaker data model and its on-disk layout.
//
// A keyring holds one access key per authorized recipient, a set of entries
// and its own properties (such as an encrypted display name). Entries and
// keyrings share the Properties bag, which they embed by value.
//
// # Directory Layout
//
// Each keyring is a directory:
//
//	<keyring>/keymaker.xml        access keys and keyring properties
//	<keyring>/entries/<entry-id>  one XML file per entry
//
// Binary fields are written as base64 with an encoding="base64" attribute.
// Whitespace inside base64 text is ignored on load, as are hidden files and
// directories inside entries/.
//
// This package never encrypts or decrypts. Properties are stored in
// whatever form the caller hands over, normally ciphertext produced by a
// secrets.Encrypter.
package keyring
