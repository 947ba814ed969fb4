package hostinterface

/*
#include <stdint.h>

typedef struct {
	double wind_angle;
	double wind_speed;
	double boat_speed_ahead;
	double boat_speed_abeam;
	double sail_area;
} AdvancedBoatInputData;

typedef struct {
	double boat_speed_ahead;
	double boat_speed_abeam;
	double heeling_angle;
} AdvancedBoatOutputData;
*/
import "C"

import (
	"github.com/sailnavsim/advancedboats/pkg/boattype"
)

//export sailnavsim_advancedboats_get_boat_type_count
func sailnavsim_advancedboats_get_boat_type_count() C.int32_t {
	return C.int32_t(boattype.Count())
}

// The output record is only written on success.
//
//export sailnavsim_advancedboats_boat_update_v
func sailnavsim_advancedboats_boat_update_v(boatType C.int32_t, inData *C.AdvancedBoatInputData, outData *C.AdvancedBoatOutputData) C.int32_t {
	if inData == nil || outData == nil {
		return C.int32_t(boattype.StatusInvalidArgument)
	}

	out, err := boattype.Update(int32(boatType), boattype.Input{
		WindAngle:  float64(inData.wind_angle),
		WindSpeed:  float64(inData.wind_speed),
		SpeedAhead: float64(inData.boat_speed_ahead),
		SpeedAbeam: float64(inData.boat_speed_abeam),
		SailArea:   float64(inData.sail_area),
	})
	if err != nil {
		return C.int32_t(boattype.Status(err))
	}

	outData.boat_speed_ahead = C.double(out.SpeedAhead)
	outData.boat_speed_abeam = C.double(out.SpeedAbeam)
	outData.heeling_angle = C.double(out.Heel)
	return C.int32_t(boattype.StatusSuccess)
}

//export sailnavsim_advancedboats_boat_course_change_rate
func sailnavsim_advancedboats_boat_course_change_rate(boatType C.int32_t) C.double {
	return C.double(boattype.CourseChangeRate(int32(boatType)))
}

//export sailnavsim_advancedboats_boat_wave_effect_resistance
func sailnavsim_advancedboats_boat_wave_effect_resistance(boatType C.int32_t) C.double {
	return C.double(boattype.WaveEffectResistance(int32(boatType)))
}

//export sailnavsim_advancedboats_boat_damage_wind_gust_threshold
func sailnavsim_advancedboats_boat_damage_wind_gust_threshold(boatType C.int32_t) C.double {
	return C.double(boattype.WindGustDamageThreshold(int32(boatType)))
}
