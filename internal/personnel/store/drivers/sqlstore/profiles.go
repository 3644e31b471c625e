package sqlstore

import (
	"context"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
)

type profilesRepo struct {
	q querier
}

const employeeProfileColumns = `user_id, first_name, middle_name, last_name, suffix, rank, unit, station,
	address, home_address, gender, date_of_birth, place_of_birth, religion,
	emergency_contact_name, emergency_relationship, emergency_contact_number, profile_picture`

func (r *profilesRepo) GetEmployeeProfile(ctx context.Context, userID int64) (domain.EmployeeProfile, error) {
	var p domain.EmployeeProfile
	err := r.q.queryRow(ctx, `SELECT `+employeeProfileColumns+` FROM employee_profiles WHERE user_id = ?`, userID).Scan(
		&p.UserID, &p.FirstName, &p.MiddleName, &p.LastName, &p.Suffix, &p.Rank, &p.Unit, &p.Station,
		&p.Address, &p.HomeAddress, &p.Gender, &p.DateOfBirth, &p.PlaceOfBirth, &p.Religion,
		&p.EmergencyContactName, &p.EmergencyRelationship, &p.EmergencyContactNumber, &p.ProfilePicture,
	)
	if err != nil {
		return domain.EmployeeProfile{}, mapNotFound(err)
	}
	return p, nil
}

func (r *profilesRepo) UpsertEmployeeProfile(ctx context.Context, p domain.EmployeeProfile) error {
	_, err := r.q.exec(ctx,
		`INSERT INTO employee_profiles (`+employeeProfileColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
			first_name = excluded.first_name,
			middle_name = excluded.middle_name,
			last_name = excluded.last_name,
			suffix = excluded.suffix,
			rank = excluded.rank,
			unit = excluded.unit,
			station = excluded.station,
			address = excluded.address,
			home_address = excluded.home_address,
			gender = excluded.gender,
			date_of_birth = excluded.date_of_birth,
			place_of_birth = excluded.place_of_birth,
			religion = excluded.religion,
			emergency_contact_name = excluded.emergency_contact_name,
			emergency_relationship = excluded.emergency_relationship,
			emergency_contact_number = excluded.emergency_contact_number,
			profile_picture = CASE WHEN excluded.profile_picture = '' THEN employee_profiles.profile_picture ELSE excluded.profile_picture END`,
		p.UserID, p.FirstName, p.MiddleName, p.LastName, p.Suffix, p.Rank, p.Unit, p.Station,
		p.Address, p.HomeAddress, p.Gender, p.DateOfBirth, p.PlaceOfBirth, p.Religion,
		p.EmergencyContactName, p.EmergencyRelationship, p.EmergencyContactNumber, p.ProfilePicture,
	)
	return r.q.mapWriteErr(err)
}

const applicantColumns = `user_id, first_name, middle_name, last_name, email, phone, address, profile_picture, application_status, applied_at`

func scanApplicant(s scanner) (domain.ApplicantProfile, error) {
	var (
		p         domain.ApplicantProfile
		appliedAt int64
	)
	err := s.Scan(&p.UserID, &p.FirstName, &p.MiddleName, &p.LastName, &p.Email, &p.Phone,
		&p.Address, &p.ProfilePicture, &p.ApplicationStatus, &appliedAt)
	p.AppliedAt = fromUnix(appliedAt)
	return p, err
}

func (r *profilesRepo) GetApplicantProfile(ctx context.Context, userID int64) (domain.ApplicantProfile, error) {
	p, err := scanApplicant(r.q.queryRow(ctx, `SELECT `+applicantColumns+` FROM applicant_profiles WHERE user_id = ?`, userID))
	if err != nil {
		return domain.ApplicantProfile{}, mapNotFound(err)
	}
	return p, nil
}

func (r *profilesRepo) CreateApplicantProfile(ctx context.Context, p domain.ApplicantProfile) error {
	_, err := r.q.exec(ctx,
		`INSERT INTO applicant_profiles (`+applicantColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.UserID, p.FirstName, p.MiddleName, p.LastName, p.Email, p.Phone,
		p.Address, p.ProfilePicture, p.ApplicationStatus, unix(p.AppliedAt),
	)
	return r.q.mapWriteErr(err)
}

func (r *profilesRepo) UpdateApplicantProfile(ctx context.Context, p domain.ApplicantProfile) error {
	return notFoundUnlessAffected(r.q.affected(ctx,
		`UPDATE applicant_profiles
		 SET first_name = ?, middle_name = ?, last_name = ?, phone = ?, address = ?
		 WHERE user_id = ?`,
		p.FirstName, p.MiddleName, p.LastName, p.Phone, p.Address, p.UserID,
	))
}

func (r *profilesRepo) SetApplicationStatus(ctx context.Context, userID int64, status domain.ApplicationStatus) error {
	return notFoundUnlessAffected(r.q.affected(ctx,
		`UPDATE applicant_profiles SET application_status = ? WHERE user_id = ?`, status, userID,
	))
}

func (r *profilesRepo) ListApplicants(ctx context.Context, status domain.ApplicationStatus, page domain.PageRequest) ([]domain.ApplicantProfile, int, error) {
	where, args := ``, []any{}
	if status != "" {
		where, args = ` WHERE application_status = ?`, append(args, status)
	}

	total, err := r.q.count(ctx, `SELECT COUNT(*) FROM applicant_profiles`+where, args...)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.q.query(ctx,
		`SELECT `+applicantColumns+` FROM applicant_profiles`+where+` ORDER BY applied_at DESC, user_id DESC LIMIT ? OFFSET ?`,
		append(args, page.Limit(), page.Offset())...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.ApplicantProfile
	for rows.Next() {
		p, err := scanApplicant(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *profilesRepo) GetAdminProfile(ctx context.Context, userID int64) (domain.AdminProfile, error) {
	var p domain.AdminProfile
	err := r.q.queryRow(ctx,
		`SELECT user_id, first_name, middle_name, last_name, email, phone, profile_picture
		 FROM admin_profiles WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &p.FirstName, &p.MiddleName, &p.LastName, &p.Email, &p.Phone, &p.ProfilePicture)
	if err != nil {
		return domain.AdminProfile{}, mapNotFound(err)
	}
	return p, nil
}

func (r *profilesRepo) UpsertAdminProfile(ctx context.Context, p domain.AdminProfile) error {
	_, err := r.q.exec(ctx,
		`INSERT INTO admin_profiles (user_id, first_name, middle_name, last_name, email, phone, profile_picture)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
			first_name = excluded.first_name,
			middle_name = excluded.middle_name,
			last_name = excluded.last_name,
			email = excluded.email,
			phone = excluded.phone,
			profile_picture = CASE WHEN excluded.profile_picture = '' THEN admin_profiles.profile_picture ELSE excluded.profile_picture END`,
		p.UserID, p.FirstName, p.MiddleName, p.LastName, p.Email, p.Phone, p.ProfilePicture,
	)
	return r.q.mapWriteErr(err)
}
