package core

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// DataType is the tagged-union discriminant carried by every PropertyValue.
type DataType int32

const (
	DataTypeUnset DataType = iota
	DataTypeBytes
	DataTypeBoolean
	DataTypeNumber
	DataTypeString
	DataTypeEnum
	DataTypeLocation
	DataTypeStruct
)

func (d DataType) String() string {
	switch d {
	case DataTypeBytes:
		return "BYTES"
	case DataTypeBoolean:
		return "BOOLEAN"
	case DataTypeNumber:
		return "NUMBER"
	case DataTypeString:
		return "STRING"
	case DataTypeEnum:
		return "ENUM"
	case DataTypeLocation:
		return "LOCATION"
	case DataTypeStruct:
		return "STRUCT"
	default:
		return "UNSET"
	}
}

// Location is a {latitude, longitude} pair in micro-degrees.
type Location struct {
	LatitudeMicro  int64
	LongitudeMicro int64
}

// PropertyValue is the tagged union over {BYTES, BOOLEAN, NUMBER, STRING,
// ENUM, LOCATION, STRUCT}. Exactly one of the typed fields is meaningful,
// selected by DataType.
type PropertyValue struct {
	Name     string
	DataType DataType

	BytesValue    []byte
	BooleanValue  bool
	NumberValue   int64 // signed integer mantissa
	NumberExp     int32 // signed decimal exponent
	StringValue   string
	EnumValue     int32 // index into the owning Property's enum options
	LocationValue Location
	StructValues  []PropertyValue // recurses for STRUCT
}

// wire field tags for PropertyValue, fixed by declaration order.
const (
	tagPVName         protowire.Number = 1
	tagPVDataType     protowire.Number = 2
	tagPVBytesValue   protowire.Number = 3
	tagPVBooleanValue protowire.Number = 4
	tagPVNumberValue  protowire.Number = 5
	tagPVNumberExp    protowire.Number = 6
	tagPVStringValue  protowire.Number = 7
	tagPVEnumValue    protowire.Number = 8
	tagPVLocationLat  protowire.Number = 9
	tagPVLocationLong protowire.Number = 10
	tagPVStructValues protowire.Number = 11
)

// Encode serialises a PropertyValue to its stable wire form.
func (v PropertyValue) Encode() []byte {
	w := &fieldWriter{}
	w.putString(tagPVName, v.Name)
	w.putVarint(tagPVDataType, uint64(v.DataType))
	switch v.DataType {
	case DataTypeBytes:
		w.putBytes(tagPVBytesValue, v.BytesValue)
	case DataTypeBoolean:
		w.putBool(tagPVBooleanValue, v.BooleanValue)
	case DataTypeNumber:
		w.putSint64(tagPVNumberValue, v.NumberValue)
		w.putSint64(tagPVNumberExp, int64(v.NumberExp))
	case DataTypeString:
		w.putString(tagPVStringValue, v.StringValue)
	case DataTypeEnum:
		w.putVarint(tagPVEnumValue, uint64(v.EnumValue))
	case DataTypeLocation:
		w.putSint64(tagPVLocationLat, v.LocationValue.LatitudeMicro)
		w.putSint64(tagPVLocationLong, v.LocationValue.LongitudeMicro)
	case DataTypeStruct:
		for _, sv := range v.StructValues {
			w.putMessage(tagPVStructValues, sv.Encode())
		}
	}
	return w.buf
}

// DecodePropertyValue parses a PropertyValue from its wire form.
func DecodePropertyValue(b []byte) (PropertyValue, error) {
	fields, err := parseFields(b)
	if err != nil {
		return PropertyValue{}, fmt.Errorf("property value: %w", err)
	}
	var v PropertyValue
	for _, f := range fields {
		switch f.tag {
		case tagPVName:
			v.Name = string(f.bytes)
		case tagPVDataType:
			v.DataType = DataType(f.varnt)
		case tagPVBytesValue:
			v.BytesValue = f.bytes
		case tagPVBooleanValue:
			v.BooleanValue = f.varnt != 0
		case tagPVNumberValue:
			v.NumberValue = sintFromVarint(f.varnt)
		case tagPVNumberExp:
			v.NumberExp = int32(sintFromVarint(f.varnt))
		case tagPVStringValue:
			v.StringValue = string(f.bytes)
		case tagPVEnumValue:
			v.EnumValue = int32(f.varnt)
		case tagPVLocationLat:
			v.LocationValue.LatitudeMicro = sintFromVarint(f.varnt)
		case tagPVLocationLong:
			v.LocationValue.LongitudeMicro = sintFromVarint(f.varnt)
		case tagPVStructValues:
			sv, err := DecodePropertyValue(f.bytes)
			if err != nil {
				return PropertyValue{}, fmt.Errorf("property value: struct field: %w", err)
			}
			v.StructValues = append(v.StructValues, sv)
		}
	}
	return v, nil
}
