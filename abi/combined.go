package abi

import (
	"bytes"
	"encoding/json"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/contract-repl/errors"
)

// Combined is a parsed combined-JSON document as emitted by
// `solc --combined-json abi`.
type Combined struct {
	Version   string
	Contracts map[string][]Entry
}

type combinedDoc struct {
	Contracts map[string]struct {
		ABI json.RawMessage `json:"abi"`
	} `json:"contracts"`
	Version string `json:"version"`
}

// LoadCombined reads and parses a combined-JSON file.
func LoadCombined(path string) (*Combined, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.PhaseABI, errors.KindNotFound).
				Path(path).
				Detail("combined ABI JSON not found").
				Cause(err).
				Build()
		}
		return nil, errors.Wrap(errors.PhaseABI, errors.KindIO, err, "read "+path)
	}
	return ParseCombined(data)
}

// ParseCombined parses a combined-JSON document. The per-contract "abi"
// value may be an array or, as older compilers emit it, a JSON string
// containing the array.
func ParseCombined(data []byte) (*Combined, error) {
	var doc combinedDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.PhaseABI, errors.KindInvalidData, err, "decode combined JSON")
	}
	if doc.Contracts == nil {
		return nil, errors.InvalidData(errors.PhaseABI, nil, `combined JSON has no "contracts" object`)
	}

	c := &Combined{
		Version:   doc.Version,
		Contracts: make(map[string][]Entry, len(doc.Contracts)),
	}
	for id, contract := range doc.Contracts {
		entries, err := decodeEntries(contract.ABI)
		if err != nil {
			return nil, errors.New(errors.PhaseABI, errors.KindInvalidData).
				Path(id).
				Detail("decode abi").
				Cause(err).
				Build()
		}
		c.Contracts[id] = entries
	}
	return c, nil
}

func decodeEntries(raw json.RawMessage) ([]Entry, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		raw = []byte(s)
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// IDs returns the contract identifiers in sorted order.
func (c *Combined) IDs() []string {
	ids := make([]string, 0, len(c.Contracts))
	for id := range c.Contracts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Match returns the identifiers that refer to the contract called name.
// Identifiers have the form "<source path>:<Name>"; a bare "<Name>" also matches.
func (c *Combined) Match(name string) []string {
	var ids []string
	for _, id := range c.IDs() {
		if ContractName(id) == name {
			ids = append(ids, id)
		}
	}
	return ids
}

// ContractName strips the source path from a combined-JSON identifier.
func ContractName(id string) string {
	if i := strings.LastIndexByte(id, ':'); i >= 0 {
		return id[i+1:]
	}
	return id
}

// Registry builds a registry for the named contract. When name is empty or
// matches no contract, the functions of every contract are merged.
func (c *Combined) Registry(name string) (*Registry, error) {
	var ids []string
	if name != "" {
		ids = c.Match(name)
	}
	if len(ids) == 0 {
		if name != "" {
			Logger().Warn("contract not present in combined ABI, indexing every contract",
				zap.String("contract", name))
		}
		ids = c.IDs()
	}

	reg := NewRegistry()
	for _, id := range ids {
		if err := reg.addContract(id, c.Contracts[id]); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
