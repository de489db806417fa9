package abi

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// AccountPrefix marks a named account reference in script arguments ("@deployer")
const AccountPrefix = "@"

// Encoder converts deploy script values to Go values accepted by go-ethereum
// and packs them
type Encoder struct{}

// NewEncoder creates a new ABI encoder
func NewEncoder() *Encoder {
	return &Encoder{}
}

// ParseABI parses a JSON ABI as stored in artifacts and deployment records
func ParseABI(raw json.RawMessage) (*abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI: %w", err)
	}
	return &parsed, nil
}

// EncodeConstructor converts raw values against the constructor inputs and packs them
func (e *Encoder) EncodeConstructor(contractABI *abi.ABI, raw []any, accounts usecase.AccountLookup) ([]any, []byte, error) {
	args, err := ConvertArgs(contractABI.Constructor.Inputs, raw, accounts)
	if err != nil {
		return nil, nil, fmt.Errorf("constructor: %w", err)
	}

	data, err := contractABI.Pack("", args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode constructor arguments: %w", err)
	}
	return args, data, nil
}

// EncodeCall converts raw values against a method's inputs and packs the calldata.
// The method is a name or a full signature such as "initialize(address)".
func (e *Encoder) EncodeCall(contractABI *abi.ABI, method string, raw []any, accounts usecase.AccountLookup) ([]any, []byte, error) {
	m, err := FindMethod(contractABI, method)
	if err != nil {
		return nil, nil, err
	}

	args, err := ConvertArgs(m.Inputs, raw, accounts)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", m.Sig, err)
	}

	data, err := contractABI.Pack(m.Name, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode %s: %w", m.Sig, err)
	}
	return args, data, nil
}

// ProxyConstructorArgs returns the constructor arguments of a proxy of the given kind
func (e *Encoder) ProxyConstructorArgs(kind models.ProxyKind, implementation, owner common.Address, data []byte) []any {
	if data == nil {
		data = []byte{}
	}
	if kind == models.TransparentProxy {
		return []any{implementation, owner, data}
	}
	return []any{implementation, data}
}

// DisplayArgs turns converted arguments into JSON friendly values for records
func (e *Encoder) DisplayArgs(args []any) []any {
	out := make([]any, len(args))
	for i, arg := range args {
		out[i] = displayValue(reflect.ValueOf(arg))
	}
	return out
}

func displayValue(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	switch val := v.Interface().(type) {
	case common.Address:
		return val.Hex()
	case *big.Int:
		return val.String()
	case []byte:
		return hexutil.Encode(val)
	}

	switch v.Kind() {
	case reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(b), v)
			return hexutil.Encode(b)
		}
		fallthrough
	case reflect.Slice:
		out := make([]any, v.Len())
		for i := range out {
			out[i] = displayValue(v.Index(i))
		}
		return out
	case reflect.Struct:
		out := make(map[string]any, v.NumField())
		for i := 0; i < v.NumField(); i++ {
			out[v.Type().Field(i).Name] = displayValue(v.Field(i))
		}
		return out
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	default:
		return v.Interface()
	}
}

// FindMethod looks a method up by name or by signature
func FindMethod(contractABI *abi.ABI, method string) (*abi.Method, error) {
	if m, ok := contractABI.Methods[method]; ok {
		return &m, nil
	}
	for _, m := range contractABI.Methods {
		if m.Sig == method {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("method '%s' not found in ABI", method)
}

// ConvertArgs coerces raw script values to the Go types go-ethereum packs for the inputs
func ConvertArgs(inputs abi.Arguments, raw []any, accounts usecase.AccountLookup) ([]any, error) {
	if len(raw) != len(inputs) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(inputs), len(raw))
	}

	args := make([]any, len(inputs))
	for i, input := range inputs {
		v, err := convertValue(input.Type, raw[i], accounts)
		if err != nil {
			name := input.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("argument %s (%s): %w", name, input.Type.String(), err)
		}
		args[i] = v
	}
	return args, nil
}

func convertValue(t abi.Type, raw any, accounts usecase.AccountLookup) (any, error) {
	switch t.T {
	case abi.AddressTy:
		return toAddress(raw, accounts)
	case abi.BoolTy:
		return toBool(raw)
	case abi.StringTy:
		switch v := raw.(type) {
		case string:
			return v, nil
		case int, int64, uint64, float64, bool:
			return fmt.Sprint(v), nil
		}
		return nil, fmt.Errorf("expected a string, got %T", raw)
	case abi.IntTy, abi.UintTy:
		return toInteger(t, raw)
	case abi.BytesTy:
		return toBytes(raw)
	case abi.FixedBytesTy:
		b, err := toBytes(raw)
		if err != nil {
			return nil, err
		}
		if len(b) > t.Size {
			return nil, fmt.Errorf("value has %d bytes, bytes%d holds %d", len(b), t.Size, t.Size)
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil
	case abi.SliceTy, abi.ArrayTy:
		return toList(t, raw, accounts)
	case abi.TupleTy:
		return toTuple(t, raw, accounts)
	default:
		return nil, fmt.Errorf("unsupported type %s", t.String())
	}
}

func toAddress(raw any, accounts usecase.AccountLookup) (common.Address, error) {
	switch v := raw.(type) {
	case common.Address:
		return v, nil
	case string:
		if name, ok := strings.CutPrefix(v, AccountPrefix); ok {
			if accounts == nil {
				return common.Address{}, fmt.Errorf("named account reference %s is not available here", v)
			}
			return accounts(name)
		}
		if !common.IsHexAddress(v) {
			return common.Address{}, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, v)
		}
		return common.HexToAddress(v), nil
	}
	return common.Address{}, fmt.Errorf("expected an address, got %T", raw)
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(v) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, fmt.Errorf("expected a bool, got %v", raw)
}

func toBigInt(raw any) (*big.Int, error) {
	switch v := raw.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
			return nil, fmt.Errorf("%v is not an exact integer (quote large numbers)", v)
		}
		return big.NewInt(int64(v)), nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), "_", "")
		n, ok := new(big.Int).SetString(s, 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", v)
		}
		return n, nil
	}
	return nil, fmt.Errorf("expected an integer, got %T", raw)
}

func toInteger(t abi.Type, raw any) (any, error) {
	n, err := toBigInt(raw)
	if err != nil {
		return nil, err
	}

	if t.T == abi.UintTy {
		if n.Sign() < 0 {
			return nil, fmt.Errorf("negative value %s for %s", n, t.String())
		}
		if n.BitLen() > t.Size {
			return nil, fmt.Errorf("value %s overflows %s", n, t.String())
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("value %s overflows %s", n, t.String())
		}
	}

	// go-ethereum packs sizes up to 64 bits from native Go integers
	goType := t.GetType()
	switch goType.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return reflect.ValueOf(n.Int64()).Convert(goType).Interface(), nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return reflect.ValueOf(n.Uint64()).Convert(goType).Interface(), nil
	default:
		return n, nil
	}
}

func toBytes(raw any) ([]byte, error) {
	switch v := raw.(type) {
	case []byte:
		return v, nil
	case string:
		if v == "" || v == "0x" {
			return []byte{}, nil
		}
		b, err := hexutil.Decode(v)
		if err != nil {
			return nil, fmt.Errorf("invalid hex bytes %q: %w", v, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("expected 0x-prefixed hex bytes, got %T", raw)
}

func toList(t abi.Type, raw any, accounts usecase.AccountLookup) (any, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", raw)
	}

	var list reflect.Value
	if t.T == abi.ArrayTy {
		if len(items) != t.Size {
			return nil, fmt.Errorf("expected %d items, got %d", t.Size, len(items))
		}
		list = reflect.New(t.GetType()).Elem()
	} else {
		list = reflect.MakeSlice(t.GetType(), len(items), len(items))
	}

	for i, item := range items {
		v, err := convertValue(*t.Elem, item, accounts)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		list.Index(i).Set(reflect.ValueOf(v))
	}
	return list.Interface(), nil
}

func toTuple(t abi.Type, raw any, accounts usecase.AccountLookup) (any, error) {
	tuple := reflect.New(t.GetType()).Elem()

	switch v := raw.(type) {
	case []any:
		if len(v) != len(t.TupleElems) {
			return nil, fmt.Errorf("expected %d tuple fields, got %d", len(t.TupleElems), len(v))
		}
		for i, elem := range t.TupleElems {
			field, err := convertValue(*elem, v[i], accounts)
			if err != nil {
				return nil, fmt.Errorf("field %d: %w", i, err)
			}
			tuple.Field(i).Set(reflect.ValueOf(field))
		}
	case map[string]any:
		for i, elem := range t.TupleElems {
			name := t.TupleRawNames[i]
			value, ok := v[name]
			if !ok {
				return nil, fmt.Errorf("missing tuple field '%s'", name)
			}
			field, err := convertValue(*elem, value, accounts)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", name, err)
			}
			tuple.Field(i).Set(reflect.ValueOf(field))
		}
	default:
		return nil, fmt.Errorf("expected a list or a mapping for a tuple, got %T", raw)
	}

	return tuple.Interface(), nil
}

var _ usecase.ABIEncoder = (*Encoder)(nil)
