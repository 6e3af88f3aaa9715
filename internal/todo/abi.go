package todo

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// taskABI is the fixed operation set of the Todo contract. The contract owns
// id assignment, creation timestamps, the soft-delete flag and ordering.
const taskABI = `[
  {"type":"function","name":"getTasks","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"tuple[]","internalType":"struct Todo.Task[]","components":[
     {"name":"id","type":"uint256","internalType":"uint256"},
     {"name":"content","type":"string","internalType":"string"},
     {"name":"completed","type":"bool","internalType":"bool"},
     {"name":"deleted","type":"bool","internalType":"bool"},
     {"name":"createdAt","type":"uint256","internalType":"uint256"}]}]},
  {"type":"function","name":"addTask","stateMutability":"nonpayable",
   "inputs":[{"name":"_content","type":"string","internalType":"string"}],"outputs":[]},
  {"type":"function","name":"toggleTask","stateMutability":"nonpayable",
   "inputs":[{"name":"_id","type":"uint256","internalType":"uint256"}],"outputs":[]},
  {"type":"function","name":"editTask","stateMutability":"nonpayable",
   "inputs":[{"name":"_id","type":"uint256","internalType":"uint256"},
             {"name":"_content","type":"string","internalType":"string"}],"outputs":[]},
  {"type":"function","name":"deleteTask","stateMutability":"nonpayable",
   "inputs":[{"name":"_id","type":"uint256","internalType":"uint256"}],"outputs":[]}
]`

var contractABI = mustParseABI()

func mustParseABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(taskABI))
	if err != nil {
		panic("todo: invalid contract ABI: " + err.Error())
	}
	return parsed
}

// ABI exposes the parsed contract ABI, mainly so test fakes can decode the
// calldata the client produces.
func ABI() abi.ABI {
	return contractABI
}
