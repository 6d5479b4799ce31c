package mapper

import (
	"stewardship-be/internal/entity"
	"stewardship-be/internal/model"
)

type MemberMapper struct{}

func NewMemberMapper() *MemberMapper {
	return &MemberMapper{}
}

func (m *MemberMapper) ToEntity(mdl *model.Member) *entity.Member {
	if mdl == nil {
		return nil
	}
	return &entity.Member{
		Id:                mdl.Id,
		FullName:          mdl.FullName,
		Email:             mdl.Email,
		GatewayCustomerId: mdl.GatewayCustomerId,
		CreatedAt:         mdl.CreatedAt,
		UpdatedAt:         mdl.UpdatedAt,
	}
}

func (m *MemberMapper) DesignationToEntity(mdl *model.Designation) *entity.Designation {
	if mdl == nil {
		return nil
	}
	return &entity.Designation{
		Id:          mdl.Id,
		Kind:        entity.DesignationKind(mdl.Kind),
		Name:        mdl.Name,
		RaisedCents: mdl.RaisedCents,
		CreatedAt:   mdl.CreatedAt,
		UpdatedAt:   mdl.UpdatedAt,
	}
}
