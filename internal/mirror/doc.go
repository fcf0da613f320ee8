// Package mirror knows the layout of Hugging Face style mirrors: where a
// repository's file listing lives and how download links appear in it.
//
// A listing page is served at
//
//	https://<domain>/<repo>/tree/<revision>
//
// and every file row carries an anchor whose href ends with "?download=true".
// Stripping that suffix gives the resolve URL the generated script downloads.
package mirror
