//
// Encapsulate Stellar's keypair package
//
// Voters, listing owners and challengers are identified by stellar-style
// public addresses; this wrapper keeps the rest of the code base independent
// of the underlying package.
//
package keypair

import (
	stellar "github.com/stellar/go/keypair"
)

// Aliases to stellar types
type Full = stellar.Full
type KP = stellar.KP

// Aliases to stellar functions
var Master = stellar.Master
var Parse = stellar.Parse
var RandomCanFail = stellar.Random
