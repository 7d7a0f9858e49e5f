package constants

import "github.com/ethereum/go-ethereum/common"

// Aave lending pool address providers, mainnet.
var AAVE_LENDING_POOL_ADDRESS_PROVIDER = common.HexToAddress("0x24a42fD28C976A61Df5D00D0599C34c4f90748c8")    // V1
var AAVE_LENDING_POOL_ADDRESS_PROVIDER_V2 = common.HexToAddress("0xB53C1a33016B2DC2fF3653530bfF1848a515c8c5") // V2

const FLASHLOAN_CONTRACT = "Flashloan"
const FLASHLOAN_V2_CONTRACT = "FlashloanV2"

const DEPLOYMENT_SCRIPT = "deployment"
const DEPLOYMENT_V2_SCRIPT = "deployment_v2"
