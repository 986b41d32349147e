package report

import (
	"Go2FlowTag/internal/model"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// ToStruct converts a report into a protobuf Struct. The JSON writer, the
// NATS publisher and the HTTP API all emit this shape:
//
//	{
//	  "run_id": "...", "format": "default", "generated_at": "RFC3339",
//	  "stats": {"total_lines": 0, "parsed_lines": 0, ...},
//	  "tag_counts": {"sv_p1": 1, "untagged": 2},
//	  "port_protocol_counts": [{"port": 25, "protocol": "tcp", "count": 1}]
//	}
func ToStruct(r *model.Report) (*structpb.Struct, error) {
	tagCounts := make(map[string]interface{}, len(r.TagCounts))
	for tag, count := range r.TagCounts {
		tagCounts[tag] = count
	}

	keys := r.SortedKeys()
	portProtocolCounts := make([]interface{}, 0, len(keys))
	for _, key := range keys {
		portProtocolCounts = append(portProtocolCounts, map[string]interface{}{
			"port":     key.Port,
			"protocol": key.Protocol,
			"count":    r.PortProtocolCounts[key],
		})
	}

	return structpb.NewStruct(map[string]interface{}{
		"run_id":       r.RunID,
		"format":       r.Format,
		"generated_at": r.GeneratedAt.UTC().Format(time.RFC3339),
		"stats": map[string]interface{}{
			"total_lines":   r.TotalLines,
			"parsed_lines":  r.ParsedLines,
			"skipped_lines": r.SkippedLines,
			"lookup_rules":  r.LookupRules,
			"skipped_rules": r.SkippedRules,
		},
		"tag_counts":           tagCounts,
		"port_protocol_counts": portProtocolCounts,
	})
}

// FromStruct rebuilds a report from the shape produced by ToStruct.
func FromStruct(s *structpb.Struct) (*model.Report, error) {
	fields := s.GetFields()
	r := &model.Report{
		RunID:              fields["run_id"].GetStringValue(),
		Format:             fields["format"].GetStringValue(),
		TagCounts:          make(map[string]uint64),
		PortProtocolCounts: make(map[model.PortProtocolKey]uint64),
	}

	if ts := fields["generated_at"].GetStringValue(); ts != "" {
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("invalid generated_at %q: %w", ts, err)
		}
		r.GeneratedAt = t
	}

	stats := fields["stats"].GetStructValue().GetFields()
	r.TotalLines = int(stats["total_lines"].GetNumberValue())
	r.ParsedLines = int(stats["parsed_lines"].GetNumberValue())
	r.SkippedLines = int(stats["skipped_lines"].GetNumberValue())
	r.LookupRules = int(stats["lookup_rules"].GetNumberValue())
	r.SkippedRules = int(stats["skipped_rules"].GetNumberValue())

	for tag, v := range fields["tag_counts"].GetStructValue().GetFields() {
		r.TagCounts[tag] = uint64(v.GetNumberValue())
	}

	for _, item := range fields["port_protocol_counts"].GetListValue().GetValues() {
		row := item.GetStructValue().GetFields()
		if row == nil {
			return nil, fmt.Errorf("port_protocol_counts entry is not an object")
		}
		key := model.NewPortProtocolKey(int(row["port"].GetNumberValue()), row["protocol"].GetStringValue())
		r.PortProtocolCounts[key] += uint64(row["count"].GetNumberValue())
	}
	return r, nil
}
