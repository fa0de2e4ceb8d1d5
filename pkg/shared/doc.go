// Package shared provides the network and credential plumbing used by the
// ledger backends: network name normalization, default endpoints, Hedera
// client construction, and signer/operator credentials loaded from the
// environment or a .env file.
//
// # Environment Variables
//
// XRPL signing identity:
//
//	XRPL_NETWORK            mainnet | testnet | devnet (default testnet)
//	XRPL_NODE_URL           JSON-RPC endpoint override
//	XRPL_ACCOUNT            classic address of the minting account
//	XRPL_SECRET_KEY         family seed (s...) or hex secp256k1 private key
//
// PLATFORM_WALLET_ADDRESS and PLATFORM_WALLET_SECRET are accepted as aliases,
// and MAINNET_/TESTNET_/DEVNET_ prefixed variants override the unscoped ones.
//
// Hedera operator (HTS backend): HEDERA_NETWORK, HEDERA_ACCOUNT_ID,
// HEDERA_PRIVATE_KEY, with OPERATOR_ID / OPERATOR_KEY fallbacks.
package shared
