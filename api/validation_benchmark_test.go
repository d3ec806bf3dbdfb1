package api

import (
	"testing"

	"taskly-api/domain"
)

func BenchmarkDecodeValid(b *testing.B) {
	bodies := []struct {
		name string
		body []byte
	}{
		{name: "Valid", body: []byte(`{"boardStatusId":"` + missingID + `","title":"Ship it","description":"soon","position":2}`)},
		{name: "Invalid", body: []byte(`{"boardStatusId":"nope","title":"","position":-1}`)},
	}

	for _, bb := range bodies {
		b.Run(bb.name, func(b *testing.B) {
			b.ReportAllocs()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					var in domain.CreateTaskInput
					_ = decodeValid(bb.body, schemas[schemaCreateTask], &in)
				}
			})
		})
	}
}
