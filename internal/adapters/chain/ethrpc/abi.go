package ethrpc

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	methodTokenURI     = "tokenURI"
	methodCurrentPrice = "getCurrentPriceInWeis"
	methodUpdate       = "updateBillboard"
	eventUpdated       = "BillboardUpdated"
)

const billboardABI = `[
  {"type":"function","name":"tokenURI","stateMutability":"view",
   "inputs":[{"name":"tokenId","type":"uint256"}],
   "outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"getCurrentPriceInWeis","stateMutability":"view",
   "inputs":[],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"updateBillboard","stateMutability":"payable",
   "inputs":[{"name":"first","type":"string"},{"name":"second","type":"string"},{"name":"third","type":"string"}],
   "outputs":[]},
  {"type":"event","name":"BillboardUpdated","anonymous":false,
   "inputs":[
     {"name":"price","type":"uint256","indexed":false},
     {"name":"first","type":"string","indexed":false},
     {"name":"second","type":"string","indexed":false},
     {"name":"third","type":"string","indexed":false}]}
]`

// billboardUpdated mirrors the BillboardUpdated event arguments.
type billboardUpdated struct {
	Price  *big.Int
	First  string
	Second string
	Third  string
}

func parseBillboardABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(billboardABI))
}
