package httpapi

import (
	"net/http"
	"strings"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/itsariadust/qrattendance/station/internal/attendance/types"
)

// acceptsProtobuf returns true if the client asked for a protobuf response.
// Log exports from the registrar's tooling send "application/x-protobuf".
func acceptsProtobuf(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		switch strings.TrimSpace(mt) {
		case "application/x-protobuf", "application/protobuf":
			return true
		}
	}
	return false
}

// logToProto encodes log rows as a ListValue of Structs with the same field
// names as the JSON rows.
func logToProto(rows []types.AttendanceRecord) (*structpb.ListValue, error) {
	items := make([]interface{}, 0, len(rows))
	for _, rec := range rows {
		items = append(items, map[string]interface{}{
			"attendance_id": rec.ID,
			"student_no":    rec.StudentNo,
			"timestamp":     rec.Timestamp.UTC().Format(time.RFC3339Nano),
			"status":        string(rec.Status),
		})
	}
	return structpb.NewList(items)
}

// writeProto marshals msg and writes it with the given HTTP status.
func writeProto(w http.ResponseWriter, status int, msg proto.Message) {
	data, err := proto.Marshal(msg)
	if err != nil {
		// Fall back to a plain-text error if marshalling fails.
		http.Error(w, "proto marshal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/x-protobuf")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
