package core

import "provenance-chain/internal/perr"

// validateValueAgainstSchema checks that value is well-formed for schema:
// matching data type, in-range ENUM index, matching NUMBER exponent, and a
// recursively well-formed STRUCT shape. Used by both CREATE_RECORD (initial
// values) and UPDATE_PROPERTIES (reported values).
func validateValueAgainstSchema(schema PropertySchema, value PropertyValue) error {
	if value.DataType != schema.DataType {
		return perr.Validationf("property %q: expected data type %s, got %s", schema.Name, schema.DataType, value.DataType)
	}
	switch schema.DataType {
	case DataTypeEnum:
		if value.EnumValue < 0 || int(value.EnumValue) >= len(schema.EnumOptions) {
			return perr.Validationf("property %q: enum index %d out of range [0,%d)", schema.Name, value.EnumValue, len(schema.EnumOptions))
		}
	case DataTypeNumber:
		if value.NumberExp != schema.NumberExponent {
			return perr.Validationf("property %q: number exponent %d does not match schema exponent %d", schema.Name, value.NumberExp, schema.NumberExponent)
		}
	case DataTypeStruct:
		for _, sub := range schema.StructSchema {
			found, ok := findStructValue(value.StructValues, sub.Name)
			if !ok {
				if sub.Required {
					return perr.Validationf("property %q: struct field %q is required", schema.Name, sub.Name)
				}
				continue
			}
			if err := validateValueAgainstSchema(sub, found); err != nil {
				return err
			}
		}
	}
	return nil
}

func findStructValue(values []PropertyValue, name string) (PropertyValue, bool) {
	for _, v := range values {
		if v.Name == name {
			return v, true
		}
	}
	return PropertyValue{}, false
}
