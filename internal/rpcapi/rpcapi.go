// Package rpcapi names the pointpool gRPC methods and converts between
// domain values and the protobuf well-known types they travel as. It is
// shared by the server transport and the client.
package rpcapi

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/server/models"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "pointpool.v1.PointPool"

// Full method names.
const (
	MethodSignup        = "/" + ServiceName + "/Signup"
	MethodLogin         = "/" + ServiceName + "/Login"
	MethodLogout        = "/" + ServiceName + "/Logout"
	MethodMe            = "/" + ServiceName + "/Me"
	MethodCollect       = "/" + ServiceName + "/Collect"
	MethodAssign        = "/" + ServiceName + "/Assign"
	MethodBalance       = "/" + ServiceName + "/Balance"
	MethodPoolStatus    = "/" + ServiceName + "/PoolStatus"
	MethodListChampions = "/" + ServiceName + "/ListChampions"
	MethodListTeams     = "/" + ServiceName + "/ListTeams"
)

func Credentials(name, password string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"name":     structpb.NewStringValue(name),
		"password": structpb.NewStringValue(password),
	}}
}

func CredentialsFrom(s *structpb.Struct) (name, password string) {
	return stringField(s, "name"), stringField(s, "password")
}

func FromUser(u *models.User) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":   structpb.NewNumberValue(float64(u.ID)),
		"name": structpb.NewStringValue(u.Name),
	}}
}

func ToUser(s *structpb.Struct) models.User {
	return models.User{ID: intField(s, "id"), Name: stringField(s, "name")}
}

func FromBalance(b *models.Balance) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"points":              structpb.NewNumberValue(float64(b.Points)),
		"can_get_points_time": structpb.NewStringValue(b.CanGetPointsTime.UTC().Format(time.RFC3339Nano)),
	}}
}

func ToBalance(s *structpb.Struct) (models.Balance, error) {
	t, err := timeField(s, "can_get_points_time")
	if err != nil {
		return models.Balance{}, err
	}
	return models.Balance{Points: intField(s, "points"), CanGetPointsTime: t}, nil
}

func FromPool(p *models.Pool, open bool) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"points":  structpb.NewNumberValue(float64(p.Points)),
		"open_at": structpb.NewStringValue(p.OpenAt.UTC().Format(time.RFC3339Nano)),
		"open":    structpb.NewBoolValue(open),
	}}
}

func ToPool(s *structpb.Struct) (models.Pool, bool, error) {
	t, err := timeField(s, "open_at")
	if err != nil {
		return models.Pool{}, false, err
	}
	return models.Pool{Points: intField(s, "points"), OpenAt: t}, s.GetFields()["open"].GetBoolValue(), nil
}

func FromChampions(list []models.Champion) *structpb.ListValue {
	out := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(list))}
	for _, c := range list {
		out.Values = append(out.Values, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"id":      structpb.NewNumberValue(float64(c.ID)),
			"team_id": structpb.NewNumberValue(float64(c.TeamID)),
			"name":    structpb.NewStringValue(c.Name),
			"points":  structpb.NewNumberValue(float64(c.Points)),
		}}))
	}
	return out
}

func ToChampions(l *structpb.ListValue) []models.Champion {
	out := make([]models.Champion, 0, len(l.GetValues()))
	for _, v := range l.GetValues() {
		s := v.GetStructValue()
		out = append(out, models.Champion{
			ID:     intField(s, "id"),
			TeamID: intField(s, "team_id"),
			Name:   stringField(s, "name"),
			Points: intField(s, "points"),
		})
	}
	return out
}

func FromTeams(list []models.Team) *structpb.ListValue {
	out := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(list))}
	for _, t := range list {
		out.Values = append(out.Values, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"id":   structpb.NewNumberValue(float64(t.ID)),
			"name": structpb.NewStringValue(t.Name),
		}}))
	}
	return out
}

func ToTeams(l *structpb.ListValue) []models.Team {
	out := make([]models.Team, 0, len(l.GetValues()))
	for _, v := range l.GetValues() {
		s := v.GetStructValue()
		out = append(out, models.Team{ID: intField(s, "id"), Name: stringField(s, "name")})
	}
	return out
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// intField reads a number field. Ids and point counts stay far below 2^53,
// where float64 is exact.
func intField(s *structpb.Struct, key string) int64 {
	return int64(s.GetFields()[key].GetNumberValue())
}

func timeField(s *structpb.Struct, key string) (time.Time, error) {
	raw := stringField(s, key)
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("field %s: %w", key, err)
	}
	return t, nil
}
