package tipjar

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	EventTipReceived = "TipReceived"
	MethodSendTip    = "sendTip"
)

const tipJarABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "tipper", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "recipient", "type": "address"},
      {"indexed": false, "internalType": "string", "name": "staffName", "type": "string"},
      {"indexed": false, "internalType": "string", "name": "message", "type": "string"},
      {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "TipReceived",
    "type": "event"
  },
  {
    "inputs": [
      {"internalType": "address payable", "name": "recipient", "type": "address"},
      {"internalType": "string", "name": "staffName", "type": "string"},
      {"internalType": "string", "name": "message", "type": "string"}
    ],
    "name": "sendTip",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  }
]`

var (
	tipJarABI     abi.ABI
	tipJarABIOnce sync.Once
	tipJarABIErr  error
)

// ABI returns the parsed TipJar ABI.
func ABI() (abi.ABI, error) {
	tipJarABIOnce.Do(func() {
		tipJarABI, tipJarABIErr = abi.JSON(strings.NewReader(tipJarABIJSON))
	})
	return tipJarABI, tipJarABIErr
}
