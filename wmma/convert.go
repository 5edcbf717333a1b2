package wmma

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// dtypeOf maps a supported Go element type to its DType.
func dtypeOf[T any]() dtypes.DType {
	var zero T
	switch any(zero).(type) {
	case float16.Float16:
		return dtypes.Float16
	case bfloat16.BFloat16:
		return dtypes.BFloat16
	case float32:
		return dtypes.Float32
	case float64:
		return dtypes.Float64
	case int8:
		return dtypes.Int8
	case int32:
		return dtypes.Int32
	}
	exceptions.Panicf("wmma: unsupported element type %T", zero)
	panic("unreachable")
}

// convertOps bundles the widening and narrowing pair for one
// (storage type, compute type) combination.
type convertOps[T any, CT Compute] struct {
	widen  func(T) CT
	narrow func(CT) T
}

type convertKey struct {
	storage, compute dtypes.DType
}

// convertRegistry holds convertOps[T, CT] values keyed by dtype pair,
// registered at init and read-only afterwards.
var convertRegistry = map[convertKey]any{}

func registerConvert[T Element, CT Compute](widen func(T) CT, narrow func(CT) T) {
	key := convertKey{storage: dtypeOf[T](), compute: dtypeOf[CT]()}
	convertRegistry[key] = convertOps[T, CT]{widen: widen, narrow: narrow}
}

// convertersFor resolves the converter pair for (T, CT), or reports an
// unsupported-combination configuration error.
func convertersFor[T Element, CT Compute]() (convertOps[T, CT], error) {
	key := convertKey{storage: dtypeOf[T](), compute: dtypeOf[CT]()}
	ops, ok := convertRegistry[key].(convertOps[T, CT])
	if !ok {
		return convertOps[T, CT]{}, errors.Errorf(
			"no conversion between %s storage and %s accumulation", key.storage, key.compute)
	}
	return ops, nil
}

func init() {
	registerConvert(
		func(v float16.Float16) float32 { return v.Float32() },
		float16.Fromfloat32)
	registerConvert(
		func(v bfloat16.BFloat16) float32 { return v.Float32() },
		bfloat16.FromFloat32)
	registerConvert(
		func(v float32) float32 { return v },
		func(v float32) float32 { return v })
	registerConvert(
		func(v float32) float64 { return float64(v) },
		func(v float64) float32 { return float32(v) })
	registerConvert(
		func(v float64) float64 { return v },
		func(v float64) float64 { return v })
	registerConvert(
		func(v int8) int32 { return int32(v) },
		func(v int32) int8 { return int8(v) })
	registerConvert(
		func(v int32) int32 { return v },
		func(v int32) int32 { return v })
}
