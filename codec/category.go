package codec

// Category identifies the strategy family of a codec.
type Category uint8

const (
	CategoryPrimitive Category = iota
	CategoryNative
	CategoryBundle
	CategorySparseBoolArray
	CategoryBoxed
	CategoryNullable
	CategoryDate
	CategoryEnum
	CategoryAggregate
	CategoryAggregateArray
	CategoryArray
	CategoryCollection
	CategoryMap
	CategorySparseArray
	CategoryAdapter
	CategorySerializable
)

var categoryNames = [...]string{
	CategoryPrimitive:       "primitive",
	CategoryNative:          "native",
	CategoryBundle:          "bundle",
	CategorySparseBoolArray: "sparse-bool-array",
	CategoryBoxed:           "boxed",
	CategoryNullable:        "nullable",
	CategoryDate:            "date",
	CategoryEnum:            "enum",
	CategoryAggregate:       "aggregate",
	CategoryAggregateArray:  "aggregate-array",
	CategoryArray:           "array",
	CategoryCollection:      "collection",
	CategoryMap:             "map",
	CategorySparseArray:     "sparse-array",
	CategoryAdapter:         "adapter",
	CategorySerializable:    "serializable",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}
